package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	cases := []struct {
		name  string
		value string
		ok    bool
	}{
		{"simple", "alpha", true},
		{"digits-and-dashes", "abc_123-x", true},
		{"empty", "", false},
		{"space", "has space", false},
		{"slash", "a/b", false},
		{"dot-dot", "..", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateID(c.value, "task_id")
			if c.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			}
		})
	}
}

func TestValidateStatuses(t *testing.T) {
	assert.NoError(t, ValidateStatuses([]string{"todo", "doing", "done"}))

	err := ValidateStatuses(nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = ValidateStatuses([]string{"todo", "todo"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = ValidateStatuses([]string{"bad status"})
	require.Error(t, err)
}

func TestValidateTags(t *testing.T) {
	assert.NoError(t, ValidateTags(nil))
	assert.NoError(t, ValidateTags([]string{"a", "b"}))
	assert.Error(t, ValidateTags([]string{"  "}))
	assert.Error(t, ValidateTags([]string{""}))
}

func TestValidatePriority(t *testing.T) {
	assert.NoError(t, ValidatePriority(""))
	for _, p := range []string{"P0", "P1", "P2", "P3"} {
		assert.NoError(t, ValidatePriority(p))
	}
	assert.Error(t, ValidatePriority("P4"))
	assert.Error(t, ValidatePriority("urgent"))
}

func TestValidateDueDate(t *testing.T) {
	assert.NoError(t, ValidateDueDate(""))
	assert.NoError(t, ValidateDueDate("2026-07-31"))
	assert.NoError(t, ValidateDueDate("2026-07-31T12:00:00Z"))
	assert.NoError(t, ValidateDueDate("2026-07-31T12:00:00+09:00"))
	assert.Error(t, ValidateDueDate("not-a-date"))
	assert.Error(t, ValidateDueDate("31-07-2026"))
}

func TestParseISO8601_NormalizesToUTC(t *testing.T) {
	a, err := ParseISO8601("2026-07-31T12:00:00+09:00")
	require.NoError(t, err)
	b, err := ParseISO8601("2026-07-31T03:00:00Z")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	d, err := ParseISO8601("2026-07-31")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Hour())
}
