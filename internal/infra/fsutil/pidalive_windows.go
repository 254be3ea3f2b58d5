//go:build windows

package fsutil

import "os"

// pidAlive probes whether pid identifies a live process. Windows lacks
// the POSIX zero-signal idiom; a full implementation should call
// OpenProcess via golang.org/x/sys/windows and check the result (spec §9
// — implementations must substitute a functionally equivalent predicate
// and document it). This conservatively treats any PID that
// os.FindProcess can locate as alive, so a stale lock from a crashed
// process on Windows requires operator intervention until that's wired
// up.
// TODO: replace with a real OpenProcess-based liveness check.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.FindProcess(pid)
	return err == nil
}
