package core

import (
	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

// recoverMove interprets a pending .tx_move.json, if one exists, and
// deterministically resolves it (spec §4.F "Recovery procedure"). It
// must be called under the project lock. Recovery always resolves
// toward the destination when evidence of progress past the body rename
// exists, otherwise toward the source.
func recoverMove(fs afero.Fs, root, projectID string) error {
	txp, err := txPath(root, projectID)
	if err != nil {
		return err
	}
	exists, err := afero.Exists(fs, txp)
	if err != nil || !exists {
		return nil
	}

	var tx task.Transaction
	if err := fsutil.ReadJSON(fs, txp, &tx); err != nil {
		return err
	}
	if tx.Op != "move" || tx.TaskID == "" || tx.From == "" || tx.To == "" {
		return task.NewIntegrityError("Invalid transaction data", map[string]any{"path": txp})
	}
	if err := task.ValidateID(tx.TaskID, "task_id"); err != nil {
		return err
	}
	if err := task.ValidateStatus(tx.From); err != nil {
		return err
	}
	if err := task.ValidateStatus(tx.To); err != nil {
		return err
	}

	statuses, err := loadStatuses(fs, root, projectID)
	if err != nil {
		return err
	}
	if !contains(statuses, tx.From) || !contains(statuses, tx.To) {
		return task.NewIntegrityError("Invalid transaction status", map[string]any{"from": tx.From, "to": tx.To})
	}

	srcBody, err := bodyPath(root, projectID, tx.From, tx.TaskID)
	if err != nil {
		return err
	}
	dstBody, err := bodyPath(root, projectID, tx.To, tx.TaskID)
	if err != nil {
		return err
	}

	srcIndex, err := readRawIndex(fs, root, projectID, tx.From)
	if err != nil {
		return err
	}
	dstIndex, err := readRawIndex(fs, root, projectID, tx.To)
	if err != nil {
		return err
	}

	_, inSrc := srcIndex[tx.TaskID]
	_, inDst := dstIndex[tx.TaskID]
	srcBodyExists, _ := afero.Exists(fs, srcBody)
	dstBodyExists, _ := afero.Exists(fs, dstBody)

	switch {
	case srcBodyExists && inSrc && !dstBodyExists && !inDst:
		// The move never got past S1: commit back to S0.
		return fs.Remove(txp)
	case dstBodyExists && inDst && !srcBodyExists && !inSrc:
		// The move fully committed: commit forward to S5.
		return fs.Remove(txp)
	case srcBodyExists && dstBodyExists:
		return task.NewIntegrityError("Task body exists in both statuses", map[string]any{"task_id": tx.TaskID})
	case inSrc && inDst:
		return task.NewIntegrityError("Task exists in multiple indexes", map[string]any{"task_id": tx.TaskID})
	}

	// Partial state between S2 and S4: forward-roll to destination.
	updated := resolveUpdatedMeta(tx, srcIndex, dstIndex)
	updated.UpdatedAt = nowUTC()

	if dstBodyExists {
		delete(srcIndex, tx.TaskID)
		dstIndex[tx.TaskID] = updated.ToMap()
		if err := writeRawIndex(fs, root, projectID, tx.From, srcIndex); err != nil {
			return err
		}
		if err := writeRawIndex(fs, root, projectID, tx.To, dstIndex); err != nil {
			return err
		}
		return fs.Remove(txp)
	}

	if srcBodyExists {
		if err := fs.Rename(srcBody, dstBody); err != nil {
			return task.NewIntegrityError("Cannot recover move", map[string]any{"task_id": tx.TaskID, "error": err.Error()})
		}
		delete(srcIndex, tx.TaskID)
		dstIndex[tx.TaskID] = updated.ToMap()
		if err := writeRawIndex(fs, root, projectID, tx.From, srcIndex); err != nil {
			return err
		}
		if err := writeRawIndex(fs, root, projectID, tx.To, dstIndex); err != nil {
			return err
		}
		return fs.Remove(txp)
	}

	return task.NewIntegrityError("Cannot recover move", map[string]any{"task_id": tx.TaskID})
}

// resolveUpdatedMeta picks the metadata to commit at recovery: the
// transaction record's updated_meta if it is a well-formed object, else
// whatever's already sitting in the destination or source index.
func resolveUpdatedMeta(tx task.Transaction, srcIndex, dstIndex task.RawIndex) task.Metadata {
	if tx.UpdatedMeta.TaskID != "" {
		return tx.UpdatedMeta
	}
	if raw, ok := dstIndex[tx.TaskID].(map[string]any); ok {
		return task.MetadataFromMap(raw)
	}
	if raw, ok := srcIndex[tx.TaskID].(map[string]any); ok {
		return task.MetadataFromMap(raw)
	}
	return task.Metadata{TaskID: tx.TaskID, CreatedAt: nowUTC(), Extra: map[string]any{}}
}
