package task

import (
	"fmt"
	"regexp"
	"time"
)

// idRe is the identifier shape shared by project_id, status, and task_id.
var idRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateID checks the identifier shape used for project/status/task ids.
func ValidateID(value, fieldName string) error {
	if value == "" || !idRe.MatchString(value) {
		return NewValidationError("Invalid "+fieldName, map[string]any{fieldName: value})
	}
	return nil
}

func ValidateStatus(value string) error {
	return ValidateID(value, "status")
}

// ValidateStatuses checks a non-empty list of distinct, identifier-shaped
// status names.
func ValidateStatuses(statuses []string) error {
	if len(statuses) == 0 {
		return NewValidationError("Statuses must be a non-empty list", nil)
	}
	seen := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		if err := ValidateStatus(s); err != nil {
			return err
		}
		if seen[s] {
			return NewValidationError("Duplicate status", map[string]any{"status": s})
		}
		seen[s] = true
	}
	return nil
}

// ValidateTags checks that tags, if present, is a list of non-empty,
// non-blank strings.
func ValidateTags(tags []string) error {
	for _, t := range tags {
		if blank(t) {
			return NewValidationError("Tag must be a non-empty string", nil)
		}
	}
	return nil
}

var allowedPriorities = map[string]bool{"P0": true, "P1": true, "P2": true, "P3": true}

func ValidatePriority(priority string) error {
	if priority == "" {
		return nil
	}
	if !allowedPriorities[priority] {
		return NewValidationError("Invalid priority", map[string]any{"priority": priority})
	}
	return nil
}

// ValidateDueDate checks that a due date string parses as an ISO-8601
// date or date-time (with or without timezone offset).
func ValidateDueDate(dueDate string) error {
	if dueDate == "" {
		return nil
	}
	if _, err := ParseISO8601(dueDate); err != nil {
		return NewValidationError("Invalid ISO 8601 date/datetime", map[string]any{"due_date": dueDate})
	}
	return nil
}

func blank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// ParseISO8601 parses either a date (2006-01-02) or a full RFC3339-style
// timestamp, accepting both the "Z" and "+hh:mm" offset forms. Dates are
// normalized to midnight UTC so they sort alongside timestamps.
func ParseISO8601(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999Z07:00", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 date/datetime: %q", s)
}
