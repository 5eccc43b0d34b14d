//go:build unix

package platform

import "syscall"

func execProcess(path string, args, env []string) error {
	return syscall.Exec(path, args, env)
}
