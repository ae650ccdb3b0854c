//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// KillTree kills a browser process and its renderer children by sending
// SIGKILL to the process group (negative PID). A group that already exited
// is not an error.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}
