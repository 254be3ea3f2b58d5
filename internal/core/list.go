package core

import (
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

// ListInput collects the inputs to Engine.List.
type ListInput struct {
	Status   string
	Tag      string
	Assignee string
	Priority string
	Fields   []string
	Limit    int
	Offset   int
	Sort     string
	Desc     bool
}

// ListResult is the successful outcome of Engine.List.
type ListResult struct {
	ProjectID string
	Count     int
	Items     []map[string]any
}

var allowedSortFields = map[string]bool{
	"created_at": true, "updated_at": true, "title": true, "priority": true, "due_date": true,
}

var defaultListFields = []string{"task_id", "status", "title", "priority", "updated_at"}

// listTasks scans the matching statuses' indexes, filters, sorts, pages,
// and projects the result onto a field list (spec §4.E "List").
func listTasks(fs afero.Fs, root, projectID string, in ListInput) (ListResult, error) {
	statuses, err := loadStatuses(fs, root, projectID)
	if err != nil {
		return ListResult{}, err
	}
	if in.Status != "" {
		if err := task.ValidateStatus(in.Status); err != nil {
			return ListResult{}, err
		}
		if !contains(statuses, in.Status) {
			return ListResult{}, task.NewNotFoundError("Status not found", map[string]any{"status": in.Status})
		}
		statuses = []string{in.Status}
	}

	limit := in.Limit
	if limit <= 0 {
		return ListResult{}, task.NewValidationError("Limit must be > 0", nil)
	}
	if limit > 1000 {
		return ListResult{}, task.NewValidationError("Limit must be <= 1000", nil)
	}
	if in.Offset < 0 {
		return ListResult{}, task.NewValidationError("Offset must be >= 0", nil)
	}

	sortField := in.Sort
	if sortField == "" {
		sortField = "updated_at"
	}
	if !allowedSortFields[sortField] {
		return ListResult{}, task.NewValidationError("Invalid sort field", map[string]any{"sort": sortField})
	}

	var items []map[string]any
	for _, st := range statuses {
		idx, err := readIndex(fs, root, projectID, st)
		if err != nil {
			return ListResult{}, err
		}
		ids := make([]string, 0, len(idx))
		for tid := range idx {
			ids = append(ids, tid)
		}
		sort.Strings(ids)
		for _, tid := range ids {
			meta := idx[tid]
			out := meta.ToMap()
			out["status"] = st
			out["title"] = task.TitleFromTaskID(tid)
			if in.Tag != "" && !hasTag(meta.Tags, in.Tag) {
				continue
			}
			if in.Assignee != "" && (meta.Assignee == nil || *meta.Assignee != in.Assignee) {
				continue
			}
			if in.Priority != "" && (meta.Priority == nil || *meta.Priority != in.Priority) {
				continue
			}
			items = append(items, out)
		}
	}

	sorted := sortListItems(items, sortField, in.Desc)

	end := in.Offset + limit
	if in.Offset > len(sorted) {
		sorted = nil
	} else {
		if end > len(sorted) {
			end = len(sorted)
		}
		sorted = sorted[in.Offset:end]
	}

	fields := in.Fields
	if len(fields) == 0 {
		fields = defaultListFields
	}
	fields = ensureField(fields, "task_id")
	fields = ensureField(fields, "status")

	outItems := make([]map[string]any, 0, len(sorted))
	for _, m := range sorted {
		item := make(map[string]any, len(fields))
		for _, f := range fields {
			item[f] = m[f]
		}
		outItems = append(outItems, item)
	}

	return ListResult{ProjectID: projectID, Count: len(outItems), Items: outItems}, nil
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

func ensureField(fields []string, name string) []string {
	for _, f := range fields {
		if f == name {
			return fields
		}
	}
	return append(fields, name)
}

type sortItem struct {
	meta    map[string]any
	taskID  string
	hasKey  bool
	strKey  string
	timeKey time.Time
}

// sortListItems orders items by sortField, missing values sorted last
// (and, among themselves, by task_id ascending regardless of desc).
func sortListItems(items []map[string]any, sortField string, desc bool) []map[string]any {
	entries := make([]sortItem, 0, len(items))
	for _, m := range items {
		si := sortItem{meta: m, taskID: stringOrEmpty(m["task_id"])}
		val, ok := m[sortField]
		if !ok || val == nil {
			entries = append(entries, si)
			continue
		}
		if sortField == "due_date" {
			s, ok := val.(string)
			if !ok {
				entries = append(entries, si)
				continue
			}
			t, err := task.ParseISO8601(s)
			if err != nil {
				entries = append(entries, si)
				continue
			}
			si.hasKey = true
			si.timeKey = t
		} else {
			s, ok := val.(string)
			if !ok {
				entries = append(entries, si)
				continue
			}
			si.hasKey = true
			si.strKey = s
		}
		entries = append(entries, si)
	}

	var present, missing []sortItem
	for _, e := range entries {
		if e.hasKey {
			present = append(present, e)
		} else {
			missing = append(missing, e)
		}
	}

	less := func(a, b sortItem) bool {
		if sortField == "due_date" {
			if !a.timeKey.Equal(b.timeKey) {
				return a.timeKey.Before(b.timeKey)
			}
			return a.taskID < b.taskID
		}
		if a.strKey != b.strKey {
			return a.strKey < b.strKey
		}
		return a.taskID < b.taskID
	}
	sort.SliceStable(present, func(i, j int) bool {
		if desc {
			return less(present[j], present[i])
		}
		return less(present[i], present[j])
	})
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].taskID < missing[j].taskID
	})

	out := make([]map[string]any, 0, len(present)+len(missing))
	for _, e := range present {
		out = append(out, e.meta)
	}
	for _, e := range missing {
		out = append(out, e.meta)
	}
	return out
}

func stringOrEmpty(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
