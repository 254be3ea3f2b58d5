package core

import (
	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

// moveTask performs the two-phase move of taskID from its current status
// to newStatus under the project lock (spec §4.F, states S0-S5):
//
//	S1: write .tx_move.json
//	S2: rename the body file to the destination status
//	S3: rewrite the source index without the task
//	S4: rewrite the destination index with the task
//	S5: remove .tx_move.json
//
// Rollback on failure during S2-S4 is best-effort; the transaction file
// is left in place for recovery (recoverMove) to interpret on the next
// lock acquisition.
func moveTask(fs afero.Fs, root, projectID, taskID, newStatus string) (task.Metadata, error) {
	statuses, err := loadStatuses(fs, root, projectID)
	if err != nil {
		return task.Metadata{}, err
	}
	if !contains(statuses, newStatus) {
		return task.Metadata{}, task.NewValidationError("Invalid status", map[string]any{"status": newStatus})
	}

	currentStatus, meta, err := findTask(fs, root, projectID, taskID)
	if err != nil {
		return task.Metadata{}, err
	}
	if currentStatus == newStatus {
		return task.Metadata{}, task.NewValidationError("Task already in target status", map[string]any{"status": newStatus})
	}

	srcIndex, err := readIndex(fs, root, projectID, currentStatus)
	if err != nil {
		return task.Metadata{}, err
	}
	dstIndex, err := readIndex(fs, root, projectID, newStatus)
	if err != nil {
		return task.Metadata{}, err
	}
	if _, ok := srcIndex[taskID]; !ok {
		return task.Metadata{}, task.NewIntegrityError("Task missing from source index", map[string]any{"task_id": taskID})
	}
	if _, ok := dstIndex[taskID]; ok {
		return task.Metadata{}, task.NewIntegrityError("Task already exists in destination index", map[string]any{"task_id": taskID})
	}

	updated := meta
	updated.UpdatedAt = nowUTC()

	srcBody, err := bodyPath(root, projectID, currentStatus, taskID)
	if err != nil {
		return task.Metadata{}, err
	}
	dstBody, err := bodyPath(root, projectID, newStatus, taskID)
	if err != nil {
		return task.Metadata{}, err
	}

	if ok, _ := afero.Exists(fs, srcBody); !ok {
		return task.Metadata{}, task.NewIntegrityError("Body file missing", map[string]any{"task_id": taskID})
	}

	txp, err := txPath(root, projectID)
	if err != nil {
		return task.Metadata{}, err
	}
	tx := task.Transaction{Op: "move", TaskID: taskID, From: currentStatus, To: newStatus, UpdatedMeta: updated}
	if err := fsutil.WriteJSONAtomic(fs, txp, tx); err != nil {
		return task.Metadata{}, err
	}

	srcNew := cloneIndex(srcIndex)
	dstNew := cloneIndex(dstIndex)
	delete(srcNew, taskID)
	dstNew[taskID] = updated

	if err := fs.Rename(srcBody, dstBody); err != nil {
		return task.Metadata{}, rollbackMove(fs, srcBody, dstBody, root, projectID, currentStatus, newStatus, srcIndex, dstIndex, err)
	}
	if err := writeIndex(fs, root, projectID, currentStatus, srcNew); err != nil {
		return task.Metadata{}, rollbackMove(fs, srcBody, dstBody, root, projectID, currentStatus, newStatus, srcIndex, dstIndex, err)
	}
	if err := writeIndex(fs, root, projectID, newStatus, dstNew); err != nil {
		return task.Metadata{}, rollbackMove(fs, srcBody, dstBody, root, projectID, currentStatus, newStatus, srcIndex, dstIndex, err)
	}

	_ = fs.Remove(txp)
	return updated, nil
}

// rollbackMove attempts to restore the pre-move state after a failure in
// the body-rename/index-rewrite window. It swallows secondary errors so
// the original cause is what gets surfaced (spec §7).
func rollbackMove(fs afero.Fs, srcBody, dstBody, root, projectID, currentStatus, newStatus string, srcIndex, dstIndex task.Index, cause error) error {
	dstExists, _ := afero.Exists(fs, dstBody)
	srcExists, _ := afero.Exists(fs, srcBody)
	if dstExists && !srcExists {
		_ = fs.Rename(dstBody, srcBody)
	}
	_ = writeIndex(fs, root, projectID, currentStatus, srcIndex)
	_ = writeIndex(fs, root, projectID, newStatus, dstIndex)
	return task.NewIntegrityError("Atomic move failed", map[string]any{"error": cause.Error()})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func cloneIndex(idx task.Index) task.Index {
	out := make(task.Index, len(idx))
	for k, v := range idx {
		out[k] = v
	}
	return out
}
