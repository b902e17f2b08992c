package storage

import "time"

// ObjectRecord is the index entry for one committed runtime object. The
// staged file tree stays authoritative; the index answers existence and
// orphan queries without scanning it.
type ObjectRecord struct {
	Type      string    `json:"type"`
	FullName  string    `json:"full_name"`
	Path      string    `json:"path"`
	Version   float64   `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// PackageRecord mirrors a config package and its active stage
type PackageRecord struct {
	Name        string    `json:"name"`
	ActiveStage string    `json:"active_stage"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store defines the interface for the runtime object index
// This is implemented by BoltDB-backed storage
type Store interface {
	// Objects
	PutObject(rec *ObjectRecord) error
	GetObject(typeName, fullName string) (*ObjectRecord, error)
	ListObjects() ([]*ObjectRecord, error)
	DeleteObject(typeName, fullName string) error

	// Packages
	PutPackage(rec *PackageRecord) error
	ListPackages() ([]*PackageRecord, error)

	// ListMissingFiles returns records whose backing file no longer
	// exists, for startup reconciliation.
	ListMissingFiles() ([]*ObjectRecord, error)

	Close() error
}
