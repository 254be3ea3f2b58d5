package core

import (
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

// IntegrityReport is the result of Engine.IntegrityCheck (spec §4.H).
type IntegrityReport struct {
	OK        bool
	ProjectID string
	Recovered bool
	Fixed     []map[string]any
	Issues    []map[string]any
	Found     []map[string]any
}

var requiredFields = []string{"task_id", "created_at", "updated_at"}

// runIntegrityCheck scans every status directory in the project, looking
// for and optionally repairing the issue classes named in spec §4.H:
// unreadable indexes, tasks duplicated across statuses, malformed or
// incomplete metadata, missing body files, orphan body files with no
// index entry, and missing status directories. It must run under the
// project lock when fix is true (the caller, Engine, is responsible for
// that — this function assumes the lock, if any, is already held).
func runIntegrityCheck(fs afero.Fs, root, projectID string, fix bool) (found, issues, fixed []map[string]any, err error) {
	projectStatuses, err := loadStatuses(fs, root, projectID)
	if err != nil {
		return nil, nil, nil, err
	}

	indexMap := make(map[string]task.RawIndex, len(projectStatuses))
	idToStatuses := make(map[string][]string)
	indexChanged := make(map[string]bool)
	indexErrorStatuses := make(map[string]bool)

	record := func(issue map[string]any, resolved bool, fixedItem map[string]any) {
		found = append(found, issue)
		if resolved {
			if fixedItem != nil {
				fixed = append(fixed, fixedItem)
			}
		} else {
			issues = append(issues, issue)
		}
	}

	for _, status := range projectStatuses {
		sd, serr := statusDir(root, projectID, status)
		if serr != nil {
			return nil, nil, nil, serr
		}
		idx, rerr := readRawIndex(fs, root, projectID, status)
		if rerr != nil {
			dirExists, _ := afero.DirExists(fs, sd)
			issue := map[string]any{"type": "INDEX_ERROR", "status": status, "message": errorMessage(rerr)}
			if fix && isMissingFileError(rerr) && dirExists {
				idx = task.RawIndex{}
				indexMap[status] = idx
				indexChanged[status] = true
				record(issue, true, map[string]any{"type": "INDEX_CREATED", "status": status})
			} else {
				record(issue, false, nil)
				indexErrorStatuses[status] = true
				continue
			}
		} else {
			indexMap[status] = idx
		}
		for tid := range indexMap[status] {
			idToStatuses[tid] = append(idToStatuses[tid], status)
		}
	}

	// Phase 2: resolve tasks duplicated across more than one status.
	dupIDs := make([]string, 0, len(idToStatuses))
	for tid, sts := range idToStatuses {
		if len(sts) > 1 {
			dupIDs = append(dupIDs, tid)
		}
	}
	sort.Strings(dupIDs)
	for _, taskID := range dupIDs {
		sts := append([]string(nil), idToStatuses[taskID]...)
		sort.Strings(sts)
		issue := map[string]any{"type": "DUPLICATE_TASK", "task_id": taskID, "statuses": sts}
		if !fix {
			record(issue, false, nil)
			continue
		}
		record(issue, true, nil)

		winner, rule := pickWinner(taskID, sts, indexMap, projectStatuses)
		var removed []string
		for _, st := range sts {
			if st == winner {
				continue
			}
			if _, ok := indexMap[st][taskID]; ok {
				delete(indexMap[st], taskID)
				indexChanged[st] = true
				removed = append(removed, st)
			}
		}
		idToStatuses[taskID] = []string{winner}
		if len(removed) > 0 {
			fixed = append(fixed, map[string]any{"type": "DUPLICATE_RESOLVED", "task_id": taskID, "kept": winner, "removed": removed, "rule": rule})
		}

		winnerBody, berr := bodyPath(root, projectID, winner, taskID)
		if berr != nil {
			return nil, nil, nil, berr
		}
		if exists, _ := afero.Exists(fs, winnerBody); !exists {
			for _, st := range sts {
				if st == winner {
					continue
				}
				candidateBody, cerr := bodyPath(root, projectID, st, taskID)
				if cerr != nil {
					return nil, nil, nil, cerr
				}
				if exists, _ := afero.Exists(fs, candidateBody); exists {
					if err := fs.Rename(candidateBody, winnerBody); err == nil {
						fixed = append(fixed, map[string]any{"type": "BODY_MOVED_FROM_DUPLICATE", "task_id": taskID, "from": st, "to": winner})
					}
					break
				}
			}
		}
	}

	// Phase 3: per-entry validation/repair, orphan bodies, missing dirs.
	for _, status := range projectStatuses {
		sd, serr := statusDir(root, projectID, status)
		if serr != nil {
			return nil, nil, nil, serr
		}
		dirExists, _ := afero.DirExists(fs, sd)
		if !dirExists {
			record(map[string]any{"type": "STATUS_DIR_MISSING", "status": status, "path": sd}, false, nil)
			continue
		}
		if indexErrorStatuses[status] {
			continue
		}

		idx := indexMap[status]
		if idx == nil {
			idx = task.RawIndex{}
			indexMap[status] = idx
		}
		changed := indexChanged[status]

		ids := make([]string, 0, len(idx))
		for tid := range idx {
			ids = append(ids, tid)
		}
		sort.Strings(ids)

		for _, taskID := range ids {
			entry := idx[taskID]
			obj, ok := entry.(map[string]any)
			if !ok {
				issue := map[string]any{"type": "META_NOT_OBJECT", "status": status, "task_id": taskID}
				if fix {
					idx[taskID] = minimalMeta(taskID)
					changed = true
					record(issue, true, map[string]any{"type": "META_REPLACED", "status": status, "task_id": taskID})
				} else {
					record(issue, false, nil)
				}
				continue
			}

			if obj["task_id"] != taskID {
				issue := map[string]any{"type": "TASK_ID_MISMATCH", "status": status, "task_id": taskID}
				if fix {
					obj["task_id"] = taskID
					changed = true
					record(issue, true, map[string]any{"type": "TASK_ID_FIXED", "status": status, "task_id": taskID})
				} else {
					record(issue, false, nil)
				}
			}

			for _, field := range requiredFields {
				if _, present := obj[field]; !present {
					issue := map[string]any{"type": "MISSING_FIELD", "status": status, "task_id": taskID, "field": field}
					if fix {
						if field == "task_id" {
							obj["task_id"] = taskID
						} else {
							obj[field] = nowUTC()
						}
						changed = true
						record(issue, true, map[string]any{"type": "FIELD_FILLED", "status": status, "task_id": taskID, "field": field})
					} else {
						record(issue, false, nil)
					}
				}
			}

			bp, bperr := bodyPath(root, projectID, status, taskID)
			if bperr != nil {
				return nil, nil, nil, bperr
			}
			if exists, _ := afero.Exists(fs, bp); !exists {
				issue := map[string]any{"type": "MISSING_BODY", "status": status, "task_id": taskID, "path": bp}
				if fix {
					if werr := fsutil.WriteTextAtomic(fs, bp, ""); werr == nil {
						record(issue, true, map[string]any{"type": "BODY_CREATED", "status": status, "task_id": taskID, "path": bp})
					} else {
						record(issue, false, nil)
					}
				} else {
					record(issue, false, nil)
				}
			}
		}

		// orphan bodies: .md files with no index entry.
		entries, lerr := afero.ReadDir(fs, sd)
		if lerr != nil {
			record(map[string]any{"type": "STATUS_DIR_LIST_ERROR", "status": status, "path": sd}, false, nil)
		} else {
			var names []string
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)
			for _, name := range names {
				tid := strings.TrimSuffix(name, ".md")
				if _, ok := idx[tid]; ok {
					continue
				}
				p, perr := bodyPath(root, projectID, status, tid)
				if perr != nil {
					return nil, nil, nil, perr
				}
				issue := map[string]any{"type": "ORPHAN_BODY", "status": status, "task_id": tid, "path": p}
				if fix && task.ValidateID(tid, "task_id") == nil && len(idToStatuses[tid]) == 0 {
					idx[tid] = minimalMeta(tid)
					changed = true
					idToStatuses[tid] = append(idToStatuses[tid], status)
					record(issue, true, map[string]any{"type": "ORPHAN_INDEX_CREATED", "status": status, "task_id": tid})
				} else {
					record(issue, false, nil)
				}
			}
		}

		if fix && changed {
			if werr := writeRawIndex(fs, root, projectID, status, idx); werr != nil {
				return nil, nil, nil, werr
			}
		}
	}

	return found, issues, fixed, nil
}

func minimalMeta(taskID string) map[string]any {
	now := nowUTC()
	return map[string]any{"task_id": taskID, "created_at": now, "updated_at": now}
}

// isMissingFileError reports whether err is the "file absent" case of
// ReadJSONRaw, as opposed to "file present but malformed". Tested via
// the error's structured Details tag rather than its message text: a
// message-text comparison is fragile against future wording changes and
// ties an unrelated layer to exact string content.
func isMissingFileError(err error) bool {
	te, ok := err.(*task.Error)
	return ok && te.Kind == task.KindIntegrity && te.Details["reason"] == "missing"
}

func errorMessage(err error) string {
	if te, ok := err.(*task.Error); ok {
		return te.Message
	}
	return err.Error()
}

// pickWinner chooses which status's copy of a duplicated task survives:
// the one with the latest parseable updated_at, falling back to the
// project's status ordering when no candidate has a usable timestamp.
func pickWinner(taskID string, statuses []string, indexMap map[string]task.RawIndex, projectStatuses []string) (string, string) {
	var bestStatus string
	var bestTime time.Time
	found := false
	for _, st := range statuses {
		entry, ok := indexMap[st][taskID]
		if !ok {
			continue
		}
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		updatedAt, ok := obj["updated_at"].(string)
		if !ok || updatedAt == "" {
			continue
		}
		parsed, err := task.ParseISO8601(updatedAt)
		if err != nil {
			continue
		}
		if !found || parsed.After(bestTime) {
			bestTime = parsed
			bestStatus = st
			found = true
		}
	}
	if found {
		return bestStatus, "updated_at"
	}
	for _, st := range projectStatuses {
		if contains(statuses, st) {
			return st, "status_order"
		}
	}
	return statuses[0], "status_order"
}
