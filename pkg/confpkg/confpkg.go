package confpkg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vigilmon/vigil/pkg/atomicfile"
	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/log"
	"github.com/vigilmon/vigil/pkg/metrics"
	"github.com/vigilmon/vigil/pkg/storage"
)

const (
	// APIPackage is the reserved package for runtime-created objects.
	// Objects in any other package are immutable through the runtime
	// pipeline.
	APIPackage = "_api"

	// activeStageFile holds the name of the package's active stage
	activeStageFile = "active-stage"
)

// RepairError reports a package that has no active stage and no stage
// directory to activate. It is unrecoverable without operator intervention:
// proceeding would mean operating against an undefined active stage and
// desynchronizing the cluster.
type RepairError struct {
	Package string
}

func (e *RepairError) Error() string {
	return fmt.Sprintf("cannot repair package '%s': no stage directory found, operator intervention required (see the troubleshooting docs)", e.Package)
}

// PackageIndexer persists package records in the runtime object index
type PackageIndexer interface {
	PutPackage(rec *storage.PackageRecord) error
}

// Store manages the on-disk layout of config packages and their stages.
// Every package has exactly one active stage; the pointer is persisted in a
// file inside the package directory.
type Store struct {
	root   string
	broker *events.Broker
	index  PackageIndexer
	logger zerolog.Logger

	// bootstrapMu serializes first-time creation of the reserved API
	// package across concurrent callers.
	bootstrapMu sync.Mutex
}

// NewStore creates a package store rooted at <dataDir>/packages. The broker
// may be nil.
func NewStore(dataDir string, broker *events.Broker) *Store {
	return &Store{
		root:   filepath.Join(dataDir, "packages"),
		broker: broker,
		logger: log.WithComponent("confpkg"),
	}
}

// SetIndex attaches the runtime index; stage activations are mirrored into
// it as package records.
func (s *Store) SetIndex(index PackageIndexer) {
	s.index = index
}

// Root returns the package root directory
func (s *Store) Root() string {
	return s.root
}

// PackageDir returns the directory of a package
func (s *Store) PackageDir(pkg string) string {
	return filepath.Join(s.root, pkg)
}

// StageDir returns the directory of a stage inside a package
func (s *Store) StageDir(pkg, stage string) string {
	return filepath.Join(s.root, pkg, stage)
}

// PackageExists reports whether a package directory exists
func (s *Store) PackageExists(pkg string) bool {
	info, err := os.Stat(s.PackageDir(pkg))
	return err == nil && info.IsDir()
}

// CreatePackage creates the package directory
func (s *Store) CreatePackage(pkg string) error {
	if err := os.MkdirAll(s.PackageDir(pkg), 0700); err != nil {
		return fmt.Errorf("failed to create package '%s': %w", pkg, err)
	}
	return nil
}

// CreateStage creates a new stage in a package and returns its id
func (s *Store) CreateStage(pkg string) (string, error) {
	stage := uuid.New().String()

	if err := os.MkdirAll(filepath.Join(s.StageDir(pkg, stage), "conf.d"), 0700); err != nil {
		return "", fmt.Errorf("failed to create stage for package '%s': %w", pkg, err)
	}

	return stage, nil
}

// ActivateStage records a stage as the package's active stage. The pointer
// file is replaced atomically so a crashed writer cannot leave a partially
// written pointer.
func (s *Store) ActivateStage(pkg, stage string) error {
	f, err := atomicfile.New(filepath.Join(s.PackageDir(pkg), activeStageFile), 0644)
	if err != nil {
		return fmt.Errorf("failed to open active-stage pointer for package '%s': %w", pkg, err)
	}
	defer f.Close()

	if _, err := f.WriteString(stage + "\n"); err != nil {
		return fmt.Errorf("failed to write active-stage pointer for package '%s': %w", pkg, err)
	}
	if err := f.Commit(); err != nil {
		return fmt.Errorf("failed to commit active-stage pointer for package '%s': %w", pkg, err)
	}

	stageLog := log.WithStage(stage)
	stageLog.Debug().
		Str("package", pkg).
		Msg("Activated stage")

	if s.index != nil {
		rec := &storage.PackageRecord{
			Name:        pkg,
			ActiveStage: stage,
			UpdatedAt:   time.Now(),
		}
		if err := s.index.PutPackage(rec); err != nil {
			// The pointer file stays authoritative; a failed index
			// write degrades lookups, not correctness.
			s.logger.Warn().Err(err).
				Str("package", pkg).
				Msg("Failed to index package record")
		}
	}

	return nil
}

// GetActiveStage returns the recorded active stage of a package, or the
// empty string when no pointer is recorded or readable.
func (s *Store) GetActiveStage(pkg string) string {
	data, err := os.ReadFile(filepath.Join(s.PackageDir(pkg), activeStageFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// GetConfigDir returns the directory of the package's active stage. When no
// active stage is recorded the package is repaired first; a failed repair
// returns a *RepairError.
func (s *Store) GetConfigDir(pkg string) (string, error) {
	active := s.GetActiveStage(pkg)

	if active == "" {
		if err := s.RepairPackage(pkg); err != nil {
			return "", err
		}
		active = s.GetActiveStage(pkg)
	}

	return s.StageDir(pkg, active), nil
}

// RepairPackage restores the active-stage invariant for a package that has
// no recorded active stage: the first stage directory found is activated.
// The choice is filesystem-order-dependent and deliberately "first
// available", not "most recent".
func (s *Store) RepairPackage(pkg string) error {
	entries, err := os.ReadDir(s.PackageDir(pkg))
	if err != nil {
		return fmt.Errorf("failed to scan package '%s': %w", pkg, err)
	}

	var found string
	for _, entry := range entries {
		if entry.IsDir() {
			found = entry.Name()
			break
		}
	}

	if found == "" {
		return &RepairError{Package: pkg}
	}

	pkgLog := log.WithPackage(pkg)
	pkgLog.Info().
		Str("stage", found).
		Msg("Repairing config package with stage")

	if err := s.ActivateStage(pkg, found); err != nil {
		return err
	}

	metrics.PackageRepairsTotal.Inc()

	if s.broker != nil {
		s.broker.Publish(&events.Event{
			Type:    events.EventPackageRepaired,
			Package: pkg,
			Metadata: map[string]string{
				"stage": found,
			},
		})
	}

	return nil
}

// EnsureAPIPackage creates and activates the reserved runtime package on
// first use. The check-then-create sequence runs under the bootstrap mutex,
// which is the only place package/stage creation races are resolved.
func (s *Store) EnsureAPIPackage() error {
	s.bootstrapMu.Lock()
	defer s.bootstrapMu.Unlock()

	if s.PackageExists(APIPackage) {
		return nil
	}

	s.logger.Info().
		Str("package", APIPackage).
		Msg("Package doesn't exist yet, creating it")

	if err := s.CreatePackage(APIPackage); err != nil {
		return err
	}

	stage, err := s.CreateStage(APIPackage)
	if err != nil {
		return err
	}

	return s.ActivateStage(APIPackage, stage)
}

// ListPackages returns the names of all packages
func (s *Store) ListPackages() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan package root: %w", err)
	}

	var pkgs []string
	for _, entry := range entries {
		if entry.IsDir() {
			pkgs = append(pkgs, entry.Name())
		}
	}
	return pkgs, nil
}
