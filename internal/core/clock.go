package core

import "time"

// nowUTC returns the current time as an ISO-8601 UTC timestamp with a
// trailing "Z" offset, the form the core always writes (spec §6).
func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.999999999Z")
}
