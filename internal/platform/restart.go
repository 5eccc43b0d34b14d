package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Restarter brings the device back to a fresh boot. On success the current
// process is usually replaced or terminated, so Restart returning nil only
// means the restart was requested.
type Restarter interface {
	Restart(ctx context.Context) error
}

// RestarterFunc adapts a function to the Restarter interface.
type RestarterFunc func(ctx context.Context) error

// Restart implements Restarter.
func (f RestarterFunc) Restart(ctx context.Context) error {
	return f(ctx)
}

// CommandRestarter runs an external command such as "systemctl reboot".
type CommandRestarter struct {
	Command []string
	// Stdout receives the command's stdout and stderr; defaults to
	// os.Stderr. It need not be safe for concurrent use.
	Stdout io.Writer
}

// Restart implements Restarter.
func (r *CommandRestarter) Restart(ctx context.Context) error {
	if len(r.Command) == 0 {
		return fmt.Errorf("restart command is empty")
	}

	out := r.Stdout
	if out == nil {
		out = os.Stderr
	}

	var stderr bytes.Buffer
	shared := SyncWriters(out)[0]
	cmd := exec.CommandContext(ctx, r.Command[0], r.Command[1:]...)
	cmd.Stdout = shared
	cmd.Stderr = io.MultiWriter(shared, &stderr)

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("running %q: %w: %s", strings.Join(r.Command, " "), err, msg)
		}
		return fmt.Errorf("running %q: %w", strings.Join(r.Command, " "), err)
	}
	return nil
}

// ExecRestarter replaces the current process image with a fresh copy of the
// supervisor binary, which reads the installed (possibly just updated) file
// from disk.
type ExecRestarter struct {
	// Path is the binary to execute; defaults to os.Executable().
	Path string
	// Args defaults to os.Args.
	Args []string
}

// Restart implements Restarter. It only returns if the exec failed.
func (r *ExecRestarter) Restart(_ context.Context) error {
	path := r.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("finding current binary: %w", err)
		}
		path = exe
	}

	args := r.Args
	if len(args) == 0 {
		args = os.Args
	}

	if err := execProcess(path, args, os.Environ()); err != nil {
		return fmt.Errorf("re-executing %s: %w", path, err)
	}
	return nil
}

// NewRestarter returns a CommandRestarter when command is non-empty and an
// ExecRestarter re-executing self otherwise. An empty self means the running
// executable.
func NewRestarter(command []string, self string) Restarter {
	if len(command) > 0 {
		return &CommandRestarter{Command: command}
	}
	return &ExecRestarter{Path: self}
}
