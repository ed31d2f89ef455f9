//go:build windows

package port

import (
	"golang.org/x/sys/windows"
)

// terminateProcess ends pid with TerminateProcess. Windows has no signal
// choice, so the signal name is ignored.
func terminateProcess(pid int, _ string) error {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(handle)

	return windows.TerminateProcess(handle, 1)
}
