package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agentx-labs/bootkeeper/internal/faults"
	"github.com/agentx-labs/bootkeeper/internal/platform"
)

// ErrReadOnly is returned by WriteFile on a read-only Storage.
var ErrReadOnly = errors.New("storage is read-only")

// Storage reads and writes whole files. Relative paths are resolved by the
// implementation; absolute paths are used as given.
type Storage interface {
	// ReadFile returns the file content. A missing file yields an error
	// matching fs.ErrNotExist.
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the file content atomically, creating parent
	// directories as needed.
	WriteFile(path string, data []byte) error
}

// DefaultFileMode is used for files that did not exist before the write.
const DefaultFileMode os.FileMode = 0644

// Dir is a Storage rooted at a directory on the local filesystem.
type Dir struct {
	Root string
}

// NewDir returns a Storage resolving relative paths against root.
func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

// Path resolves p against the root directory.
func (d *Dir) Path(p string) string {
	if filepath.IsAbs(p) || d.Root == "" {
		return p
	}
	return filepath.Join(d.Root, p)
}

// ReadFile implements Storage.
func (d *Dir) ReadFile(p string) ([]byte, error) {
	path := d.Path(p)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "reading "+path, err)
	}
	return data, nil
}

// WriteFile implements Storage. The new content is written to a temp file in
// the destination directory and renamed over the target; the target's
// permissions are preserved when it already exists.
func (d *Dir) WriteFile(p string, data []byte) error {
	path := d.Path(p)
	if err := writeAtomic(path, data); err != nil {
		return faults.Wrap(faults.ErrStorage, "writing "+path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	mode := platform.ModeOf(path, DefaultFileMode)

	tmpFile, err := os.CreateTemp(dir, ".bootkeeper-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // no-op after a successful rename

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := platform.Chmod(tmpPath, mode); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// readOnly wraps a Storage and rejects every write.
type readOnly struct {
	inner Storage
}

// ReadOnly returns a view of s that fails every WriteFile with ErrReadOnly.
func ReadOnly(s Storage) Storage {
	return readOnly{inner: s}
}

func (r readOnly) ReadFile(path string) ([]byte, error) {
	return r.inner.ReadFile(path)
}

func (r readOnly) WriteFile(path string, _ []byte) error {
	return faults.Wrap(faults.ErrStorage, "writing "+path, ErrReadOnly)
}

// IsNotExist reports whether err means the file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
