package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_ToMap_OmitsUnsetOptionalFields(t *testing.T) {
	m := Metadata{TaskID: "t1", CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: "2026-01-01T00:00:00Z", Extra: map[string]any{}}
	out := m.ToMap()
	assert.Equal(t, "t1", out["task_id"])
	_, hasTags := out["tags"]
	_, hasAssignee := out["assignee"]
	_, hasPriority := out["priority"]
	_, hasDueDate := out["due_date"]
	assert.False(t, hasTags)
	assert.False(t, hasAssignee)
	assert.False(t, hasPriority)
	assert.False(t, hasDueDate)
}

func TestMetadata_ToMap_IncludesSetOptionalFields(t *testing.T) {
	assignee := "alice"
	priority := "P1"
	due := "2026-08-01"
	m := Metadata{
		TaskID: "t1", CreatedAt: "c", UpdatedAt: "u",
		Tags: []string{"x", "y"}, Assignee: &assignee, Priority: &priority, DueDate: &due,
		Extra: map[string]any{"custom": "value"},
	}
	out := m.ToMap()
	assert.Equal(t, []string{"x", "y"}, out["tags"])
	assert.Equal(t, "alice", out["assignee"])
	assert.Equal(t, "P1", out["priority"])
	assert.Equal(t, "2026-08-01", out["due_date"])
	assert.Equal(t, "value", out["custom"])
}

func TestMetadataFromMap_RoundTrip(t *testing.T) {
	assignee := "bob"
	orig := Metadata{
		TaskID: "t2", CreatedAt: "c", UpdatedAt: "u",
		Tags: []string{"a"}, Assignee: &assignee, Extra: map[string]any{"k": "v"},
	}
	back := MetadataFromMap(orig.ToMap())
	assert.Equal(t, orig.TaskID, back.TaskID)
	assert.Equal(t, orig.Tags, back.Tags)
	require.NotNil(t, back.Assignee)
	assert.Equal(t, *orig.Assignee, *back.Assignee)
	assert.Equal(t, "v", back.Extra["k"])
}

func TestMetadataFromMap_TolerantOfMalformedFields(t *testing.T) {
	m := MetadataFromMap(map[string]any{"task_id": 123, "tags": "not-a-list"})
	assert.Equal(t, "", m.TaskID)
	assert.Nil(t, m.Tags)
}

func TestMetadata_MarshalJSON_DeterministicKeyOrder(t *testing.T) {
	m := Metadata{TaskID: "t1", CreatedAt: "c", UpdatedAt: "u", Extra: map[string]any{"zeta": 1, "alpha": 2}}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"created_at":"c","task_id":"t1","updated_at":"u","zeta":1}`, string(data))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "t1", raw["task_id"])
	assert.Equal(t, float64(1), raw["zeta"])
	assert.Equal(t, float64(2), raw["alpha"])
}

func TestIndex_ToRaw(t *testing.T) {
	idx := Index{"t1": {TaskID: "t1", CreatedAt: "c", UpdatedAt: "u", Extra: map[string]any{}}}
	raw := idx.ToRaw()
	obj, ok := raw["t1"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "t1", obj["task_id"])
}
