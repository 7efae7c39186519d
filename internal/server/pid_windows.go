//go:build windows

package server

import "golang.org/x/sys/windows"

// exit code reported for a process that has not exited
const stillActive = 259

// isRunning checks if a process with the given PID is running
func isRunning(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}
