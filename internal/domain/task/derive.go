package task

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle NFKC-normalizes a title and collapses internal whitespace,
// so visually identical Unicode titles (e.g. differing only by combining
// marks or full-width spaces) derive the same task_id.
func NormalizeTitle(title string) string {
	normalized := norm.NFKC.String(title)
	return strings.Join(strings.Fields(normalized), " ")
}

// TaskIDFromTitle derives a task_id from a (normalized) title: spaces
// become underscores. The caller is expected to have already normalized
// the title with NormalizeTitle.
func TaskIDFromTitle(title string) string {
	if title == "" {
		return ""
	}
	return strings.ReplaceAll(title, " ", "_")
}

// TitleFromTaskID is the inverse derivation used to compute a task's
// (never persisted) display title from its task_id.
func TitleFromTaskID(taskID string) string {
	return strings.ReplaceAll(taskID, "_", " ")
}
