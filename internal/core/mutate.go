package core

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

// AddTaskInput collects the inputs to Engine.Add.
type AddTaskInput struct {
	Title    string
	TaskID   string // optional explicit task_id; must match the title-derived one if given
	Status   string // optional; defaults to the lexicographically first status
	Body     string
	Tags     []string
	Assignee string
	Priority string
	DueDate  string
}

// AddResult is the successful outcome of Engine.Add.
type AddResult struct {
	ProjectID string
	TaskID    string
	Status    string
	Title     string
}

// addTask creates a new task under the project lock (spec §4.G "Create
// task"). It must run after the integrity precondition has already
// passed.
func addTask(fs afero.Fs, root, projectID string, in AddTaskInput) (AddResult, error) {
	normalizedTitle := task.NormalizeTitle(in.Title)
	if normalizedTitle == "" {
		return AddResult{}, task.NewValidationError("Title is required", nil)
	}
	derivedID := task.TaskIDFromTitle(normalizedTitle)
	if derivedID == "" {
		return AddResult{}, task.NewValidationError("Title is required", nil)
	}
	if err := task.ValidateID(derivedID, "task_id"); err != nil {
		return AddResult{}, err
	}
	if task.TitleFromTaskID(derivedID) != normalizedTitle {
		return AddResult{}, task.NewValidationError("Title must use spaces instead of underscores", map[string]any{"title": in.Title})
	}
	if err := task.ValidateTags(in.Tags); err != nil {
		return AddResult{}, err
	}
	if err := task.ValidatePriority(in.Priority); err != nil {
		return AddResult{}, err
	}
	if err := task.ValidateDueDate(in.DueDate); err != nil {
		return AddResult{}, err
	}

	statuses, err := loadStatuses(fs, root, projectID)
	if err != nil {
		return AddResult{}, err
	}
	status := in.Status
	if status == "" {
		status = statuses[0]
	} else if err := task.ValidateStatus(status); err != nil {
		return AddResult{}, err
	} else if !contains(statuses, status) {
		return AddResult{}, task.NewValidationError("Invalid status", map[string]any{"status": status})
	}

	indexes := make(map[string]task.Index, len(statuses))
	allIDs := map[string]bool{}
	for _, st := range statuses {
		idx, err := readIndex(fs, root, projectID, st)
		if err != nil {
			return AddResult{}, err
		}
		indexes[st] = idx
		for id := range idx {
			allIDs[id] = true
		}
	}

	taskID := in.TaskID
	if taskID != "" {
		if err := task.ValidateID(taskID, "task_id"); err != nil {
			return AddResult{}, err
		}
		if taskID != derivedID {
			return AddResult{}, task.NewValidationError("Title and task_id must match", map[string]any{"title": normalizedTitle, "task_id": taskID})
		}
		if allIDs[taskID] {
			return AddResult{}, task.NewConflictError("Task ID already exists", map[string]any{"task_id": taskID})
		}
	} else {
		base := derivedID
		taskID = base
		suffix := 2
		for allIDs[taskID] {
			taskID = fmt.Sprintf("%s-%d", base, suffix)
			suffix++
		}
	}

	index := indexes[status]
	if _, ok := index[taskID]; ok {
		return AddResult{}, task.NewConflictError("Task ID already exists", map[string]any{"task_id": taskID})
	}

	bp, err := bodyPath(root, projectID, status, taskID)
	if err != nil {
		return AddResult{}, err
	}
	if exists, _ := afero.Exists(fs, bp); exists {
		return AddResult{}, task.NewIntegrityError("Body file exists without index", map[string]any{"task_id": taskID, "status": status})
	}

	now := nowUTC()
	meta := task.Metadata{TaskID: taskID, CreatedAt: now, UpdatedAt: now, Extra: map[string]any{}}
	if in.Tags != nil {
		meta.Tags = in.Tags
	}
	if in.Assignee != "" {
		meta.Assignee = &in.Assignee
	}
	if in.Priority != "" {
		meta.Priority = &in.Priority
	}
	if in.DueDate != "" {
		meta.DueDate = &in.DueDate
	}

	if err := writeTextAtomicSafe(fs, bp, in.Body); err != nil {
		return AddResult{}, err
	}
	indexNew := cloneIndex(index)
	indexNew[taskID] = meta
	if err := writeIndex(fs, root, projectID, status, indexNew); err != nil {
		_ = fs.Remove(bp)
		return AddResult{}, err
	}

	return AddResult{ProjectID: projectID, TaskID: taskID, Status: status, Title: task.TitleFromTaskID(taskID)}, nil
}

// setBody replaces a task's body text under the project lock (spec §4.G
// "Replace body").
func setBody(fs afero.Fs, root, projectID, taskID, text string) (string, error) {
	status, meta, err := findTask(fs, root, projectID, taskID)
	if err != nil {
		return "", err
	}
	index, err := readIndex(fs, root, projectID, status)
	if err != nil {
		return "", err
	}
	if _, ok := index[taskID]; !ok {
		return "", task.NewIntegrityError("Task missing from index", map[string]any{"task_id": taskID})
	}

	bp, err := bodyPath(root, projectID, status, taskID)
	if err != nil {
		return "", err
	}
	if err := writeTextAtomicSafe(fs, bp, text); err != nil {
		return "", err
	}

	meta.UpdatedAt = nowUTC()
	index[taskID] = meta
	if err := writeIndex(fs, root, projectID, status, index); err != nil {
		return "", err
	}
	return meta.UpdatedAt, nil
}

// MetaPatch is the input to Engine.MetaUpdate: a whitelist-style
// set/unset patch (spec §4.G "Patch metadata").
type MetaPatch struct {
	Set   map[string]any
	Unset []string
}

var forbiddenPatchFields = map[string]bool{
	"task_id": true, "created_at": true, "updated_at": true, "status": true, "title": true,
}

// metaUpdate applies a patch to a task's metadata under the project
// lock. Unknown keys under Set are accepted and stored verbatim
// (forward-compatible metadata, spec §4.G).
func metaUpdate(fs afero.Fs, root, projectID, taskID string, patch MetaPatch) (string, []string, []string, error) {
	for k := range patch.Set {
		if forbiddenPatchFields[k] {
			return "", nil, nil, task.NewValidationError("Forbidden field in set", map[string]any{"field": k})
		}
	}
	for _, k := range patch.Unset {
		if k == "" {
			return "", nil, nil, task.NewValidationError("Invalid patch format", map[string]any{"field": "unset"})
		}
		if forbiddenPatchFields[k] {
			return "", nil, nil, task.NewValidationError("Forbidden field in unset", map[string]any{"field": k})
		}
	}
	if err := validateSetFields(patch.Set); err != nil {
		return "", nil, nil, err
	}

	status, meta, err := findTask(fs, root, projectID, taskID)
	if err != nil {
		return "", nil, nil, err
	}
	index, err := readIndex(fs, root, projectID, status)
	if err != nil {
		return "", nil, nil, err
	}
	if _, ok := index[taskID]; !ok {
		return "", nil, nil, task.NewIntegrityError("Task missing from index", map[string]any{"task_id": taskID})
	}

	updated := applyPatch(meta, patch)
	updated.UpdatedAt = nowUTC()
	index[taskID] = updated
	if err := writeIndex(fs, root, projectID, status, index); err != nil {
		return "", nil, nil, err
	}

	setKeys := sortedKeys(patch.Set)
	unsetKeys := append([]string(nil), patch.Unset...)
	sort.Strings(unsetKeys)
	return updated.UpdatedAt, setKeys, unsetKeys, nil
}

func validateSetFields(set map[string]any) error {
	if v, ok := set["tags"]; ok {
		raw, ok := v.([]any)
		if !ok {
			return task.NewValidationError("Tags must be a list", nil)
		}
		list := make([]string, 0, len(raw))
		for _, t := range raw {
			s, ok := t.(string)
			if !ok {
				return task.NewValidationError("Tags must be a list of strings", nil)
			}
			list = append(list, s)
		}
		if err := task.ValidateTags(list); err != nil {
			return err
		}
	}
	if v, ok := set["assignee"]; ok {
		if _, ok := v.(string); !ok {
			return task.NewValidationError("Assignee must be a string", nil)
		}
	}
	if v, ok := set["priority"]; ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return task.NewValidationError("Invalid priority", map[string]any{"priority": v})
		}
		if err := task.ValidatePriority(s); err != nil {
			return err
		}
	}
	if v, ok := set["due_date"]; ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return task.NewValidationError("Invalid ISO 8601 date/datetime", map[string]any{"due_date": v})
		}
		if err := task.ValidateDueDate(s); err != nil {
			return err
		}
	}
	return nil
}

func applyPatch(meta task.Metadata, patch MetaPatch) task.Metadata {
	base := meta.ToMap()
	for k, v := range patch.Set {
		base[k] = v
	}
	for _, k := range patch.Unset {
		delete(base, k)
	}
	base["task_id"] = meta.TaskID
	base["created_at"] = meta.CreatedAt
	return task.MetadataFromMap(base)
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeTextAtomicSafe(fs afero.Fs, path, text string) error {
	return fsutil.WriteTextAtomic(fs, path, text)
}
