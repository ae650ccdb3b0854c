//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillTree kills a browser process and its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	// taskkill exits non-zero when the tree is already gone.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
	return nil
}
