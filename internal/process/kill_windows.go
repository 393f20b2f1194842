//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills a process tree with taskkill (/F force, /T tree).
// Non-positive pids are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort; launcher.Kill() runs afterwards.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
