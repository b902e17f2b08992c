package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// File writes a file through a uniquely named temporary file in the target
// directory. The destination is only touched by Commit, which renames the
// temp file into place after an fsync. A File that is closed without being
// committed removes its temp file, so a failed writer leaves nothing behind.
type File struct {
	path      string
	tmpPath   string
	f         *os.File
	committed bool
	closed    bool
}

// New creates an atomic writer for path. The parent directory must already
// exist.
func New(path string, perm os.FileMode) (*File, error) {
	tmpPath := fmt.Sprintf("%s.tmp.%s", path, uuid.New().String())

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	return &File{
		path:    path,
		tmpPath: tmpPath,
		f:       f,
	}, nil
}

// Write implements io.Writer
func (a *File) Write(p []byte) (int, error) {
	if a.closed {
		return 0, fmt.Errorf("atomic file %s already closed", a.path)
	}
	return a.f.Write(p)
}

// WriteString writes a string to the temp file
func (a *File) WriteString(s string) (int, error) {
	return a.Write([]byte(s))
}

// Flush forces buffered data to disk so I/O errors surface immediately
// instead of at commit time.
func (a *File) Flush() error {
	if a.closed {
		return fmt.Errorf("atomic file %s already closed", a.path)
	}
	if err := a.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file for %s: %w", a.path, err)
	}
	return nil
}

// Commit makes the written content durable and renames it into place. After
// Commit, Close is a no-op.
func (a *File) Commit() error {
	if a.closed {
		return fmt.Errorf("atomic file %s already closed", a.path)
	}

	if err := a.f.Sync(); err != nil {
		a.discard()
		return fmt.Errorf("failed to sync temp file for %s: %w", a.path, err)
	}
	if err := a.f.Close(); err != nil {
		os.Remove(a.tmpPath)
		a.closed = true
		return fmt.Errorf("failed to close temp file for %s: %w", a.path, err)
	}
	if err := os.Rename(a.tmpPath, a.path); err != nil {
		os.Remove(a.tmpPath)
		a.closed = true
		return fmt.Errorf("failed to rename %s into place: %w", a.tmpPath, err)
	}

	a.committed = true
	a.closed = true
	return nil
}

// Close discards the temp file if the writer was not committed. It is safe
// to call Close multiple times and from a defer.
func (a *File) Close() error {
	if a.closed {
		return nil
	}
	a.discard()
	return nil
}

func (a *File) discard() {
	a.f.Close()
	os.Remove(a.tmpPath)
	a.closed = true
}

// Path returns the destination path
func (a *File) Path() string {
	return a.path
}

// TmpDirEntries returns the leftover temp files for path's directory, used
// by tests and startup cleanup.
func TmpDirEntries(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp.*"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for temp files: %w", dir, err)
	}
	return matches, nil
}
