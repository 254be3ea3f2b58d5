//go:build !windows

package fsutil

import (
	"os"
	"syscall"
)

// pidAlive probes whether pid identifies a live process via a
// zero-signal send. This is inherently racy across PID recycling; it is
// the only practical stale-lock criterion on a single host (spec §9).
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but we lack permission to signal it.
	return err == syscall.EPERM
}
