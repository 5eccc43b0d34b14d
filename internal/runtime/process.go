package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/bootkeeper/internal/branding"
	"github.com/agentx-labs/bootkeeper/internal/faults"
	"github.com/agentx-labs/bootkeeper/internal/platform"
)

// stderrTailSize bounds the stderr excerpt carried by a launch error.
const stderrTailSize = 2048

// ProcessLauncher runs bundles as child processes. The child's stdin is
// the null device: the supervisor's console reader owns the terminal input,
// so a bundle that needs operator keys must read them from its own device.
type ProcessLauncher struct {
	// Interpreter is prepended to the command line, e.g. ["python3"].
	// Empty runs the file directly.
	Interpreter []string
	// Dir is the working directory; defaults to the file's directory.
	Dir string
	// Env is added to the inherited environment.
	Env []string
	// Stdout and Stderr default to os.Stdout/os.Stderr. They may be the
	// same writer and need not be safe for concurrent use.
	Stdout io.Writer
	Stderr io.Writer
}

// Launch implements Launcher. The child is not tied to ctx: once started it
// runs until it exits on its own.
func (p *ProcessLauncher) Launch(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return faults.Wrap(faults.ErrLaunch, "launching "+path, err)
	}

	if _, err := os.Stat(path); err != nil {
		return faults.Wrap(faults.ErrLaunch, "launching "+path, err)
	}

	argv := append(append([]string{}, p.Interpreter...), path)
	cmd := exec.Command(argv[0], argv[1:]...)

	cmd.Dir = p.Dir
	if cmd.Dir == "" {
		cmd.Dir = filepath.Dir(path)
	}

	env := setEnv(os.Environ(), branding.EnvVar("SCRIPT"), path)
	for _, kv := range p.Env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env = setEnv(env, k, v)
		}
	}
	cmd.Env = env

	stdout := p.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if _, ok := stdout.(*os.File); !ok {
		ws := platform.SyncWriters(stdout, stderr)
		stdout, stderr = ws[0], ws[1]
	}

	tail := &tailBuffer{max: stderrTailSize}
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, tail)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := fmt.Sprintf("exited with status %d", exitErr.ExitCode())
		if t := strings.TrimSpace(tail.String()); t != "" {
			msg += ": " + t
		}
		return faults.Wrap(faults.ErrLaunch, "running "+path, errors.New(msg))
	}
	return faults.Wrap(faults.ErrLaunch, "running "+path, err)
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
