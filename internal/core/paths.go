// Package core implements the transactional move subsystem and the
// integrity checker/repairer: the "hard engineering" parts of the task
// tracking engine (spec §1). Every exported Engine method except Init
// acquires the project lock, does its work, and releases the lock; the
// mutators, List and Show first run integrity-check-with-repair as a
// precondition (spec §5).
package core

import "github.com/ttrackhq/ttrack/internal/infra/fsutil"

func projectDir(root, projectID string) (string, error) {
	return fsutil.SafeJoin(root, projectID)
}

func statusDir(root, projectID, status string) (string, error) {
	return fsutil.SafeJoin(root, projectID, status)
}

func indexPath(root, projectID, status string) (string, error) {
	return fsutil.SafeJoin(root, projectID, status, "index.json")
}

func bodyPath(root, projectID, status, taskID string) (string, error) {
	return fsutil.SafeJoin(root, projectID, status, taskID+".md")
}

func txPath(root, projectID string) (string, error) {
	return fsutil.SafeJoin(root, projectID, ".tx_move.json")
}
