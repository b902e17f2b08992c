package runtimeconfig

import (
	"os"

	"github.com/vigilmon/vigil/pkg/confpkg"
	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/log"
	"github.com/vigilmon/vigil/pkg/metrics"
	"github.com/vigilmon/vigil/pkg/objects"
)

// DeleteObject removes a runtime-created object: its registration, its
// activation, and its backing file. Only objects in the reserved runtime
// package are deletable this way; objects loaded from static configuration
// fail with a policy error before anything is touched.
func (m *Manager) DeleteObject(obj *objects.Object, cascade bool, diag *Diagnostics, origin *events.Origin) error {
	if obj.Package() != confpkg.APIPackage {
		err := &PolicyError{Reason: "object cannot be deleted because it was not created using the API"}
		metrics.DeleteFailuresTotal.WithLabelValues("policy").Inc()
		diag.AddError(err)
		return err
	}

	// The external dependency graph could, with malformed data, contain a
	// cycle; the visited set guarantees the cascade terminates anyway.
	visited := make(map[string]struct{})

	return m.deleteObjectHelper(obj, cascade, diag, origin, visited)
}

func (m *Manager) deleteObjectHelper(obj *objects.Object, cascade bool, diag *Diagnostics, origin *events.Origin, visited map[string]struct{}) error {
	key := obj.Type().Name() + "!" + obj.FullName()
	if _, seen := visited[key]; seen {
		return nil
	}
	visited[key] = struct{}{}

	parents := m.graph.GetParents(obj)

	if len(parents) > 0 && !cascade {
		err := &PolicyError{
			Reason: "object '" + obj.FullName() + "' of type '" + obj.Type().Name() +
				"' cannot be deleted because other objects depend on it. " +
				"Use cascading delete to delete it anyway.",
		}
		metrics.DeleteFailuresTotal.WithLabelValues("dependents").Inc()
		diag.AddError(err)
		return err
	}

	// Dependents must not outlive what they depend on: cascade depth
	// first. A failed dependent is recorded but does not stop the rest of
	// the cascade.
	for _, parent := range parents {
		m.deleteObjectHelper(parent, cascade, diag, origin, visited)
	}

	// Mark the object for the cluster delete event before deactivating,
	// so replication listeners see the marker on the deactivation.
	obj.SetExtension(objects.ExtensionDeleted, true)

	// Forward the origin so peers that initiated this delete do not get
	// it echoed back.
	m.objects.Deactivate(obj, origin)

	if err := m.objects.Unregister(obj, origin); err != nil {
		// The object stays registered, so its backing file must stay
		// too; file and registry never diverge.
		metrics.DeleteFailuresTotal.WithLabelValues("unregister").Inc()
		diag.AddError(err)
		return err
	}

	m.graph.RemoveObject(obj)

	if obj.Package() == confpkg.APIPackage {
		if path := obj.SourcePath(); path != "" {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				m.logger.Warn().Err(err).
					Str("object", obj.FullName()).
					Msg("Failed to remove config file")
			}
		}

		if m.index != nil {
			if err := m.index.DeleteObject(obj.Type().Name(), obj.FullName()); err != nil {
				m.logger.Warn().Err(err).
					Str("object", obj.FullName()).
					Msg("Failed to remove object record")
			}
		}
	}

	metrics.ObjectsDeletedTotal.WithLabelValues(obj.Type().Name()).Inc()
	objLog := log.WithObject(obj.Type().Name(), obj.FullName())
	objLog.Info().
		Str("package", obj.Package()).
		Msg("Deleted object")

	return nil
}
