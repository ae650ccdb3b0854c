package process

// Notes:
// - KillTree: only invalid and non-existent PIDs are exercised. Real kill
//   behavior needs a spawned browser, which unit tests avoid.
// - PID 0 and negative PIDs would signal the test's own process group, so the
//   guard is tested instead of the syscall.

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKillTree - PID Handling
// ---------------------------------------------------------------------------

func TestKillTree_RejectsNonPositivePID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1} {
		if err := KillTree(pid); !errors.Is(err, ErrInvalidPID) {
			t.Errorf("KillTree(%d) = %v, want ErrInvalidPID", pid, err)
		}
	}
}

func TestKillTree_MissingProcess(t *testing.T) {
	t.Parallel()

	if err := KillTree(999999999); err != nil {
		t.Errorf("KillTree() on a missing process = %v, want nil", err)
	}
}
