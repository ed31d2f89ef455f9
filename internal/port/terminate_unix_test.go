//go:build !windows

package port

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTerminateProcess_KillsChild starts a child process and verifies that
// terminateProcess delivers SIGKILL to it.
func TestTerminateProcess_KillsChild(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start sleep: %v", err)
	}

	require.NoError(t, terminateProcess(cmd.Process.Pid, "KILL"))

	err := cmd.Wait()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "child should exit with a signal, got %v", err)
	assert.False(t, exitErr.Success())
}

// TestTerminateProcess_UnknownSignal verifies that an unknown signal name
// is rejected before any syscall.
func TestTerminateProcess_UnknownSignal(t *testing.T) {
	err := terminateProcess(os.Getpid(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown signal")
}
