package core

import (
	"strings"

	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

// ShowInput collects the inputs to Engine.Show.
type ShowInput struct {
	TaskID       string
	IncludeBody  bool
	MaxBodyChars *int
	MaxBodyLines *int
}

// BodyView is the (possibly truncated) body text returned when
// ShowInput.IncludeBody is set.
type BodyView struct {
	Text         string
	Truncated    bool
	MaxBodyChars *int
	MaxBodyLines *int
}

// ShowResult is the successful outcome of Engine.Show.
type ShowResult struct {
	ProjectID string
	TaskID    string
	Status    string
	Meta      map[string]any
	Body      *BodyView
}

// showTask resolves a single task's metadata (and optionally its body)
// under the project lock (spec §4.E "Show").
func showTask(fs afero.Fs, root, projectID string, in ShowInput) (ShowResult, error) {
	if in.MaxBodyChars != nil && *in.MaxBodyChars < 0 {
		return ShowResult{}, task.NewValidationError("max_body_chars must be >= 0", nil)
	}
	if in.MaxBodyLines != nil && *in.MaxBodyLines < 0 {
		return ShowResult{}, task.NewValidationError("max_body_lines must be >= 0", nil)
	}

	status, meta, err := findTask(fs, root, projectID, in.TaskID)
	if err != nil {
		return ShowResult{}, err
	}
	metaOut := meta.ToMap()
	metaOut["title"] = task.TitleFromTaskID(in.TaskID)

	result := ShowResult{ProjectID: projectID, TaskID: in.TaskID, Status: status, Meta: metaOut}

	if in.IncludeBody {
		bp, err := bodyPath(root, projectID, status, in.TaskID)
		if err != nil {
			return ShowResult{}, err
		}
		data, err := afero.ReadFile(fs, bp)
		if err != nil {
			return ShowResult{}, task.NewIntegrityError("Body file missing", map[string]any{"task_id": in.TaskID})
		}
		text := string(data)
		truncated := false

		if in.MaxBodyLines != nil {
			lines := splitKeepEnds(text)
			if len(lines) > *in.MaxBodyLines {
				text = strings.Join(lines[:*in.MaxBodyLines], "")
				truncated = true
			}
		}
		if in.MaxBodyChars != nil && len([]rune(text)) > *in.MaxBodyChars {
			runes := []rune(text)
			text = string(runes[:*in.MaxBodyChars])
			truncated = true
		}

		result.Body = &BodyView{Text: text, Truncated: truncated, MaxBodyChars: in.MaxBodyChars, MaxBodyLines: in.MaxBodyLines}
	}

	return result, nil
}

// splitKeepEnds splits text into lines, keeping the trailing newline on
// every line but the (possibly unterminated) last one — Python's
// str.splitlines(keepends=True).
func splitKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i, r := range text {
		if r == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
