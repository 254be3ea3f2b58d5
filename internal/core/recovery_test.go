package core

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

func writeTx(t *testing.T, fs afero.Fs, root, projectID string, tx task.Transaction) {
	t.Helper()
	txp, err := txPath(root, projectID)
	require.NoError(t, err)
	require.NoError(t, fsutil.WriteJSONAtomic(fs, txp, tx))
}

func TestRecoverMove_NoTransactionIsNoOp(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo", "doing"})
	require.NoError(t, recoverMove(fs, "/root", "p1"))
}

func TestRecoverMove_CommitsBackWhenOnlySourceIntact(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo", "doing"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Body: "b", Status: "todo"})
	require.NoError(t, err)

	idx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	writeTx(t, fs, "/root", "p1", task.Transaction{
		Op: "move", TaskID: "x", From: "todo", To: "doing", UpdatedMeta: idx["x"],
	})

	require.NoError(t, recoverMove(fs, "/root", "p1"))

	txp, err := txPath("/root", "p1")
	require.NoError(t, err)
	exists, _ := afero.Exists(fs, txp)
	assert.False(t, exists)

	srcIdx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	_, inSrc := srcIdx["x"]
	assert.True(t, inSrc)
}

func TestRecoverMove_CommitsForwardWhenOnlyDestinationIntact(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo", "doing"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Body: "b", Status: "todo"})
	require.NoError(t, err)

	updated, err := moveTask(fs, "/root", "p1", "x", "doing")
	require.NoError(t, err)

	// Re-create the tx sentinel as if the process crashed right before S5.
	writeTx(t, fs, "/root", "p1", task.Transaction{
		Op: "move", TaskID: "x", From: "todo", To: "doing", UpdatedMeta: updated,
	})

	require.NoError(t, recoverMove(fs, "/root", "p1"))

	txp, err := txPath("/root", "p1")
	require.NoError(t, err)
	exists, _ := afero.Exists(fs, txp)
	assert.False(t, exists)

	dstIdx, err := readIndex(fs, "/root", "p1", "doing")
	require.NoError(t, err)
	_, inDst := dstIdx["x"]
	assert.True(t, inDst)
}

func TestRecoverMove_ForwardRollsWhenBodyMovedButIndexesStale(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo", "doing"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Body: "b", Status: "todo"})
	require.NoError(t, err)

	idx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	meta := idx["x"]

	// Simulate a crash between S2 (body renamed) and S3/S4 (indexes rewritten):
	// move the body by hand, leave both indexes as they were pre-move.
	srcBody, err := bodyPath("/root", "p1", "todo", "x")
	require.NoError(t, err)
	dstBody, err := bodyPath("/root", "p1", "doing", "x")
	require.NoError(t, err)
	require.NoError(t, fs.Rename(srcBody, dstBody))

	writeTx(t, fs, "/root", "p1", task.Transaction{
		Op: "move", TaskID: "x", From: "todo", To: "doing", UpdatedMeta: meta,
	})

	require.NoError(t, recoverMove(fs, "/root", "p1"))

	txp, err := txPath("/root", "p1")
	require.NoError(t, err)
	exists, _ := afero.Exists(fs, txp)
	assert.False(t, exists)

	srcIdx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	_, inSrc := srcIdx["x"]
	assert.False(t, inSrc)

	dstIdx, err := readIndex(fs, "/root", "p1", "doing")
	require.NoError(t, err)
	_, inDst := dstIdx["x"]
	assert.True(t, inDst)
}

func TestRecoverMove_BodyInBothStatusesIsIntegrityError(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo", "doing"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Body: "b", Status: "todo"})
	require.NoError(t, err)

	idx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)

	dstBody, err := bodyPath("/root", "p1", "doing", "x")
	require.NoError(t, err)
	require.NoError(t, fsutil.WriteTextAtomic(fs, dstBody, "b"))

	writeTx(t, fs, "/root", "p1", task.Transaction{
		Op: "move", TaskID: "x", From: "todo", To: "doing", UpdatedMeta: idx["x"],
	})

	err = recoverMove(fs, "/root", "p1")
	require.Error(t, err)
	assert.True(t, task.IsIntegrity(err))
}

func TestRecoverMove_RejectsMalformedTransaction(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo", "doing"})

	writeTx(t, fs, "/root", "p1", task.Transaction{Op: "move", TaskID: "", From: "todo", To: "doing"})

	err := recoverMove(fs, "/root", "p1")
	require.Error(t, err)
	assert.True(t, task.IsIntegrity(err))
}

func TestRecoverMove_RejectsUnknownStatusInTransaction(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo", "doing"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Body: "b", Status: "todo"})
	require.NoError(t, err)

	idx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	writeTx(t, fs, "/root", "p1", task.Transaction{
		Op: "move", TaskID: "x", From: "todo", To: "archived", UpdatedMeta: idx["x"],
	})

	err = recoverMove(fs, "/root", "p1")
	require.Error(t, err)
	assert.True(t, task.IsIntegrity(err))
}
