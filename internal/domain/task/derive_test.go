package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "fix the bug", NormalizeTitle("  fix   the\tbug  "))
	assert.Equal(t, "", NormalizeTitle("   "))
}

func TestNormalizeTitle_NFKC(t *testing.T) {
	// Full-width space (U+3000) normalizes under NFKC to a run collapsible
	// alongside ASCII spaces by Fields.
	got := NormalizeTitle("fix　the　bug")
	assert.Equal(t, "fix the bug", got)
}

func TestTaskIDFromTitle_RoundTrip(t *testing.T) {
	title := NormalizeTitle("Fix the login bug")
	id := TaskIDFromTitle(title)
	assert.Equal(t, "Fix_the_login_bug", id)
	assert.Equal(t, title, TitleFromTaskID(id))
}

func TestTaskIDFromTitle_Empty(t *testing.T) {
	assert.Equal(t, "", TaskIDFromTitle(""))
}
