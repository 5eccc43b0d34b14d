//go:build !unix

package platform

import (
	"os"
	"os/exec"
)

// execProcess starts a detached copy of the binary and exits, since the
// platform has no exec(2).
func execProcess(path string, args, env []string) error {
	cmd := exec.Command(path, args[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
