package core

import (
	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

// InitResult is the successful outcome of Engine.Init.
type InitResult struct {
	ProjectID string
	Statuses  []string
}

// initProject creates a new project directory tree: one subdirectory per
// status, each holding an empty index.json (spec §4.C). It fails with
// ConflictError if the project directory already exists — init never
// merges into an existing project.
func initProject(fs afero.Fs, root, projectID string, statuses []string) (InitResult, error) {
	if err := task.ValidateID(projectID, "project_id"); err != nil {
		return InitResult{}, err
	}
	if err := task.ValidateStatuses(statuses); err != nil {
		return InitResult{}, err
	}

	pd, err := projectDir(root, projectID)
	if err != nil {
		return InitResult{}, err
	}
	if exists, _ := afero.Exists(fs, pd); exists {
		return InitResult{}, task.NewConflictError("Project already exists", map[string]any{"project_id": projectID})
	}
	if err := fs.MkdirAll(pd, 0o755); err != nil {
		return InitResult{}, task.NewUnexpectedError("failed to create project directory", map[string]any{"error": err.Error()})
	}

	for _, status := range statuses {
		sd, err := statusDir(root, projectID, status)
		if err != nil {
			return InitResult{}, err
		}
		if err := fs.MkdirAll(sd, 0o755); err != nil {
			return InitResult{}, task.NewUnexpectedError("failed to create status directory", map[string]any{"status": status, "error": err.Error()})
		}
		ip, err := indexPath(root, projectID, status)
		if err != nil {
			return InitResult{}, err
		}
		if err := fsutil.WriteJSONAtomic(fs, ip, map[string]any{}); err != nil {
			return InitResult{}, err
		}
	}

	return InitResult{ProjectID: projectID, Statuses: statuses}, nil
}
