package core

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

func setupProject(t *testing.T, fs afero.Fs, root, projectID string, statuses []string) {
	t.Helper()
	_, err := initProject(fs, root, projectID, statuses)
	require.NoError(t, err)
}

func TestAddTask_DerivesIDAndDefaultsToFirstStatus(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"backlog", "open", "done"})

	result, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "fix bug", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "fix_bug", result.TaskID)
	assert.Equal(t, "backlog", result.Status)
	assert.Equal(t, "fix bug", result.Title)

	idx, err := readIndex(fs, "/root", "p1", "backlog")
	require.NoError(t, err)
	meta, ok := idx["fix_bug"]
	require.True(t, ok)
	assert.Equal(t, "fix_bug", meta.TaskID)

	bp, err := bodyPath("/root", "p1", "backlog", "fix_bug")
	require.NoError(t, err)
	body, err := afero.ReadFile(fs, bp)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestAddTask_ExplicitTaskIDMustMatchTitle(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})

	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "fix bug", TaskID: "other_id"})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))
}

func TestAddTask_CollisionGetsSuffixWhenIDDerived(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})

	first, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "fix bug"})
	require.NoError(t, err)
	assert.Equal(t, "fix_bug", first.TaskID)

	second, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "fix bug"})
	require.NoError(t, err)
	assert.Equal(t, "fix_bug-2", second.TaskID)
}

func TestAddTask_ExplicitIDCollisionIsConflict(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})

	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "fix bug", TaskID: "fix_bug"})
	require.NoError(t, err)

	_, err = addTask(fs, "/root", "p1", AddTaskInput{Title: "fix bug", TaskID: "fix_bug"})
	require.Error(t, err)
	assert.True(t, task.IsConflict(err))
}

func TestAddTask_InvalidStatusRejected(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})

	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Status: "nonexistent"})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))
}

func TestAddTask_RejectsBadPriority(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})

	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Priority: "P9"})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))
}

func TestSetBody_ReplacesTextAndBumpsUpdatedAt(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Body: "v1"})
	require.NoError(t, err)

	idxBefore, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	before := idxBefore["x"].UpdatedAt

	updatedAt, err := setBody(fs, "/root", "p1", "x", "v2")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, updatedAt, before)

	bp, err := bodyPath("/root", "p1", "todo", "x")
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, bp)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestSetBody_Idempotent_OnlyUpdatedAtChanges(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Body: "same"})
	require.NoError(t, err)

	_, err = setBody(fs, "/root", "p1", "x", "same")
	require.NoError(t, err)

	idx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	assert.Equal(t, "x", idx["x"].TaskID)

	bp, err := bodyPath("/root", "p1", "todo", "x")
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, bp)
	require.NoError(t, err)
	assert.Equal(t, "same", string(data))
}

func TestSetBody_NotFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})
	_, err := setBody(fs, "/root", "p1", "nope", "x")
	require.Error(t, err)
	assert.True(t, task.IsNotFound(err))
}

func TestMetaUpdate_SetAndUnset(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x", Assignee: "alice"})
	require.NoError(t, err)

	_, setKeys, unsetKeys, err := metaUpdate(fs, "/root", "p1", "x", MetaPatch{
		Set:   map[string]any{"priority": "P1", "tags": []any{"a", "b"}},
		Unset: []string{"assignee"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"priority", "tags"}, setKeys)
	assert.Equal(t, []string{"assignee"}, unsetKeys)

	idx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	meta := idx["x"]
	require.NotNil(t, meta.Priority)
	assert.Equal(t, "P1", *meta.Priority)
	assert.Equal(t, []string{"a", "b"}, meta.Tags)
	assert.Nil(t, meta.Assignee)
}

func TestMetaUpdate_ForbidsProtectedFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x"})
	require.NoError(t, err)

	_, _, _, err = metaUpdate(fs, "/root", "p1", "x", MetaPatch{Set: map[string]any{"status": "done"}})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))

	_, _, _, err = metaUpdate(fs, "/root", "p1", "x", MetaPatch{Unset: []string{"task_id"}})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))
}

func TestMetaUpdate_RejectsMalformedTags(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x"})
	require.NoError(t, err)

	_, _, _, err = metaUpdate(fs, "/root", "p1", "x", MetaPatch{Set: map[string]any{"tags": "not-a-list"}})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))

	_, _, _, err = metaUpdate(fs, "/root", "p1", "x", MetaPatch{Set: map[string]any{"tags": []any{"ok", 5}}})
	require.Error(t, err)
	assert.True(t, task.IsValidation(err))
}

func TestMetaUpdate_UnknownKeysRoundTripInExtra(t *testing.T) {
	fs := afero.NewMemMapFs()
	setupProject(t, fs, "/root", "p1", []string{"todo"})
	_, err := addTask(fs, "/root", "p1", AddTaskInput{Title: "x"})
	require.NoError(t, err)

	_, _, _, err = metaUpdate(fs, "/root", "p1", "x", MetaPatch{Set: map[string]any{"epic": "Q3"}})
	require.NoError(t, err)

	idx, err := readIndex(fs, "/root", "p1", "todo")
	require.NoError(t, err)
	assert.Equal(t, "Q3", idx["x"].Extra["epic"])
}
