package core

import (
	"sort"

	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

// loadStatuses discovers a project's status set: the sorted list of
// immediate subdirectories of the project directory whose name matches
// the identifier shape. project.json, if present, is never consulted —
// the status set is always derived from the directory listing (spec
// §4.D). An empty set is an IntegrityError.
func loadStatuses(fs afero.Fs, root, projectID string) ([]string, error) {
	pd, err := projectDir(root, projectID)
	if err != nil {
		return nil, err
	}
	isDir, err := afero.DirExists(fs, pd)
	if err != nil {
		return nil, task.NewUnexpectedError("failed to stat project", map[string]any{"error": err.Error()})
	}
	if !isDir {
		return nil, task.NewNotFoundError("Project not found", map[string]any{"project_id": projectID})
	}

	entries, err := afero.ReadDir(fs, pd)
	if err != nil {
		return nil, task.NewUnexpectedError("failed to list project directory", map[string]any{"error": err.Error()})
	}

	var statuses []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if task.ValidateStatus(e.Name()) != nil {
			continue
		}
		statuses = append(statuses, e.Name())
	}
	sort.Strings(statuses)

	if len(statuses) == 0 {
		return nil, task.NewIntegrityError("No statuses found", map[string]any{"project_id": projectID})
	}
	return statuses, nil
}

// readRawIndex reads a status's index.json without assuming its entries
// are well-formed metadata objects — used by the integrity checker.
func readRawIndex(fs afero.Fs, root, projectID, status string) (task.RawIndex, error) {
	ip, err := indexPath(root, projectID, status)
	if err != nil {
		return nil, err
	}
	raw, err := fsutil.ReadJSONRaw(fs, ip)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, task.NewIntegrityError("Index must be a JSON object", map[string]any{"status": status})
	}
	out := make(task.RawIndex, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out, nil
}

// readIndex reads and type-checks a status's index, failing with
// IntegrityError if any entry is not a well-formed metadata object. Use
// this from operations that require a clean project (the integrity
// precondition guarantees this by the time a mutator runs).
func readIndex(fs afero.Fs, root, projectID, status string) (task.Index, error) {
	raw, err := readRawIndex(fs, root, projectID, status)
	if err != nil {
		return nil, err
	}
	out := make(task.Index, len(raw))
	for k, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, task.NewIntegrityError("Malformed metadata entry", map[string]any{"status": status, "task_id": k})
		}
		out[k] = task.MetadataFromMap(obj)
	}
	return out, nil
}

// writeIndex atomically writes idx to <status>/index.json.
func writeIndex(fs afero.Fs, root, projectID, status string, idx task.Index) error {
	ip, err := indexPath(root, projectID, status)
	if err != nil {
		return err
	}
	return fsutil.WriteJSONAtomic(fs, ip, idx.ToRaw())
}

// writeRawIndex atomically writes a raw (possibly still-malformed-free,
// repaired) index to <status>/index.json.
func writeRawIndex(fs afero.Fs, root, projectID, status string, idx task.RawIndex) error {
	ip, err := indexPath(root, projectID, status)
	if err != nil {
		return err
	}
	return fsutil.WriteJSONAtomic(fs, ip, map[string]any(idx))
}
