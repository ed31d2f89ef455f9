//go:build !windows

package port

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// terminateProcess delivers SIG<signal> to pid.
func terminateProcess(pid int, signal string) error {
	sig := unix.SignalNum("SIG" + signal)
	if sig == 0 {
		return fmt.Errorf("unknown signal %q", signal)
	}
	return unix.Kill(pid, sig)
}
