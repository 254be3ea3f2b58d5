package core

import (
	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

// findTask scans every status's index and returns the unique
// (status, metadata) pair holding taskID. It fails with NotFoundError if
// absent everywhere, or IntegrityError if present in more than one
// status (spec §4.E).
func findTask(fs afero.Fs, root, projectID, taskID string) (string, task.Metadata, error) {
	statuses, err := loadStatuses(fs, root, projectID)
	if err != nil {
		return "", task.Metadata{}, err
	}

	var foundStatus string
	var foundMeta task.Metadata
	count := 0
	for _, st := range statuses {
		idx, err := readIndex(fs, root, projectID, st)
		if err != nil {
			return "", task.Metadata{}, err
		}
		if meta, ok := idx[taskID]; ok {
			foundStatus, foundMeta = st, meta
			count++
		}
	}

	if count == 0 {
		return "", task.Metadata{}, task.NewNotFoundError("Task not found", map[string]any{"project_id": projectID, "task_id": taskID})
	}
	if count > 1 {
		return "", task.Metadata{}, task.NewIntegrityError("Task exists in multiple statuses", map[string]any{"project_id": projectID, "task_id": taskID})
	}
	return foundStatus, foundMeta, nil
}
