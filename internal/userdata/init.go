package userdata

import (
	"fmt"
	"io"
	"os"

	"github.com/agentx-labs/bootkeeper/internal/platform"
)

// layoutDir is one directory the supervisor owns.
type layoutDir struct {
	role string
	path string
	perm os.FileMode
}

// InitLayout creates the state and install directories, reporting each one
// to w. The state directory holds the selection and is private to the
// owner. Existing directories are left alone.
func InitLayout(w io.Writer, stateDir, installDir string) error {
	for _, d := range []layoutDir{
		{role: "state", path: stateDir, perm: DirPermSecure},
		{role: "install", path: installDir, perm: DirPermNormal},
	} {
		if err := d.ensure(w); err != nil {
			return err
		}
	}
	return nil
}

func (d layoutDir) ensure(w io.Writer) error {
	if info, err := os.Stat(d.path); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s directory %s exists but is not a directory", d.role, d.path)
		}
		fmt.Fprintf(w, "  [SKIP] %s directory %s already exists\n", d.role, d.path)
		return nil
	}

	if err := os.MkdirAll(d.path, d.perm); err != nil {
		return fmt.Errorf("creating %s directory %s: %w", d.role, d.path, err)
	}
	// MkdirAll applies the umask; set the exact bits.
	if err := platform.Chmod(d.path, d.perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", d.path, err)
	}
	fmt.Fprintf(w, "  [ OK ] Created %s directory %s\n", d.role, d.path)
	return nil
}
