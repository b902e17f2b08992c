package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vigilmon/vigil/pkg/atomicfile"
	"github.com/vigilmon/vigil/pkg/confcompile"
	"github.com/vigilmon/vigil/pkg/confpkg"
	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/log"
	"github.com/vigilmon/vigil/pkg/metrics"
	"github.com/vigilmon/vigil/pkg/storage"
	"github.com/vigilmon/vigil/pkg/types"
	"github.com/vigilmon/vigil/pkg/workqueue"
)

// authorityExempt reports whether creating objects of this type skips the
// authority notification. Comments and downtimes churn far too much for
// authority rebalancing to pay off.
func authorityExempt(t *types.Type) bool {
	return t.Name() == "Comment" || t.Name() == "Downtime"
}

// CreateObject folds one new object into the live configuration: serialize
// and validate the attributes, write the config file atomically, compile and
// evaluate it, register and activate the result, then make the file durable.
// On any failure the call returns a non-nil error, records it in diag, and
// leaves neither a persisted file nor a registered object behind. A failed
// package repair propagates as *confpkg.RepairError without touching diag.
func (m *Manager) CreateObject(t *types.Type, fullName string, ignoreOnError bool, templates []string, attrs types.Attributes, diag *Diagnostics, origin *events.Origin) error {
	if err := m.packages.EnsureAPIPackage(); err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("storage").Inc()
		diag.AddError(err)
		return err
	}

	if m.objects.Get(t.Name(), fullName) != nil {
		err := fmt.Errorf("object '%s' already exists", fullName)
		metrics.CreateFailuresTotal.WithLabelValues("exists").Inc()
		diag.AddError(err)
		return err
	}

	config, err := CreateObjectConfig(t, fullName, ignoreOnError, templates, attrs)
	if err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("validation").Inc()
		diag.AddError(err)
		return err
	}

	path, err := m.ComputeNewObjectConfigPath(t, fullName)
	if err != nil {
		var repairErr *confpkg.RepairError
		if errors.As(err, &repairErr) {
			// The storage path itself is unusable; this is not an
			// ordinary request failure and is not folded into the
			// diagnostics.
			return err
		}

		metrics.CreateFailuresTotal.WithLabelValues("path").Inc()
		diag.Add("config package broken: "+err.Error(), fmt.Sprintf("%+v", err))
		return err
	}

	// The atomic writer doesn't create missing directories, so we have to
	// do it ourselves.
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("io").Inc()
		diag.AddError(err)
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The config goes into a unique temp file, so two callers racing on
	// the same path never see each other's partial writes. The temp file
	// is discarded automatically unless this call reaches Commit.
	fp, err := atomicfile.New(path, 0644)
	if err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("io").Inc()
		diag.AddError(err)
		return err
	}
	defer fp.Close()

	if _, err := fp.WriteString(config); err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("io").Inc()
		diag.AddError(err)
		return err
	}
	// Flush the output buffer to catch any errors ASAP and handle them
	// accordingly.
	if err := fp.Flush(); err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("io").Inc()
		diag.AddError(err)
		return err
	}

	unit, err := confcompile.CompileText(path, config, "", confpkg.APIPackage, m.types)
	if err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("compile").Inc()
		diag.AddError(err)
		return err
	}

	actx := confcompile.NewActivationContext()
	if err := unit.Evaluate(actx); err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("compile").Inc()
		diag.AddError(err)
		return err
	}

	q := workqueue.New("runtimeconfig-create", 4)

	newObjs, ok := confcompile.CommitItems(actx, q, m.objects, m.graph)
	if !ok {
		m.logger.Info().
			Str("object", fullName).
			Msg("Failed to commit config item")

		m.drainExceptions(q, diag)
		metrics.CreateFailuresTotal.WithLabelValues("commit").Inc()
		return &CommitError{FullName: fullName}
	}

	// Forward the origin so the change is not synced back toward where it
	// came from.
	if ok := confcompile.ActivateItems(q, newObjs, m.objects, origin); !ok {
		m.logger.Info().
			Str("object", fullName).
			Msg("Failed to activate config object")

		m.drainExceptions(q, diag)
		metrics.CreateFailuresTotal.WithLabelValues("activation").Inc()
		return &ActivationError{FullName: fullName}
	}

	if m.notifier != nil && !authorityExempt(t) {
		m.notifier.UpdateObjectAuthority(origin)
	}

	// At this stage we should have a config object already. If not, it
	// was ignored during commit.
	obj := m.objects.Get(t.Name(), fullName)
	if obj == nil {
		m.logger.Info().
			Str("object", fullName).
			Msg("Object was not created but ignored due to errors")
		return nil
	}

	// The object has passed compilation and validation, the file can be
	// committed safely.
	if err := fp.Commit(); err != nil {
		metrics.CreateFailuresTotal.WithLabelValues("io").Inc()
		diag.AddError(err)
		return err
	}

	if m.index != nil {
		rec := &storage.ObjectRecord{
			Type:      t.Name(),
			FullName:  fullName,
			Path:      path,
			Version:   obj.Version(),
			CreatedAt: time.Now(),
		}
		if err := m.index.PutObject(rec); err != nil {
			// The staged file tree stays authoritative; a failed
			// index write degrades lookups, not correctness.
			m.logger.Warn().Err(err).
				Str("object", fullName).
				Msg("Failed to index object record")
		}
	}

	metrics.ObjectsCreatedTotal.WithLabelValues(t.Name()).Inc()
	objLog := log.WithObject(t.Name(), fullName)
	objLog.Info().
		Str("package", confpkg.APIPackage).
		Msg("Created and activated object")

	return nil
}

func (m *Manager) drainExceptions(q *workqueue.Queue, diag *Diagnostics) {
	for _, err := range q.DrainExceptions() {
		diag.AddError(err)
	}
}
