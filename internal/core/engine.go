package core

import (
	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
	"github.com/ttrackhq/ttrack/internal/obslog"
)

// Engine is the contract boundary between the task tracking core and any
// collaborator that drives it — the CLI, or a future embedder (spec §5,
// §6). Every method except Init acquires the project's exclusive lock,
// resolves any pending move transaction, and releases the lock when done;
// all but Init and IntegrityCheck also run integrity-check-with-repair as
// a precondition before performing their work.
type Engine struct {
	fs   afero.Fs
	root string
}

// NewEngine returns an Engine rooted at root, using fs as the
// filesystem backend (afero.NewOsFs() in production).
func NewEngine(fs afero.Fs, root string) *Engine {
	return &Engine{fs: fs, root: root}
}

func (e *Engine) withLock(projectID string, fn func() error) error {
	if err := task.ValidateID(projectID, "project_id"); err != nil {
		return err
	}
	pd, err := projectDir(e.root, projectID)
	if err != nil {
		return err
	}
	lock := fsutil.NewProjectLock(e.fs, pd)
	if err := lock.Acquire(pd); err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

// ensureIntegrity resolves any pending move transaction and then runs
// integrity-check-with-repair, failing with IntegrityError if issues
// remain after repair. Callers must already hold the project lock.
func (e *Engine) ensureIntegrity(projectID string) error {
	txp, err := txPath(e.root, projectID)
	if err != nil {
		return err
	}
	if exists, _ := afero.Exists(e.fs, txp); exists {
		if err := recoverMove(e.fs, e.root, projectID); err != nil {
			return err
		}
	}

	_, issues, fixed, found, err := e.runCheck(projectID, true)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return nil
	}
	return task.NewIntegrityError("Integrity check failed", map[string]any{
		"project_id": projectID,
		"issues":     issues,
		"fixed":      fixed,
		"found":      found,
	})
}

func (e *Engine) runCheck(projectID string, fix bool) (ok bool, issues, fixed, found []map[string]any, err error) {
	found, issues, fixed, err = runIntegrityCheck(e.fs, e.root, projectID, fix)
	if err != nil {
		return false, nil, nil, nil, err
	}
	return len(issues) == 0, issues, fixed, found, nil
}

// Init creates a new project (spec §4.C). It does not require the
// integrity precondition: there is nothing to check yet.
func (e *Engine) Init(projectID string, statuses []string) (InitResult, error) {
	op := obslog.Begin("init")
	result, err := initProject(e.fs, e.root, projectID, statuses)
	op.Done(err)
	return result, err
}

// Add creates a task (spec §4.G "Create task").
func (e *Engine) Add(projectID string, in AddTaskInput) (AddResult, error) {
	op := obslog.Begin("add")
	var out AddResult
	err := e.withLock(projectID, func() error {
		if err := e.ensureIntegrity(projectID); err != nil {
			return err
		}
		var err error
		out, err = addTask(e.fs, e.root, projectID, in)
		return err
	})
	op.Done(err)
	return out, err
}

// List returns a filtered, sorted, paged view of a project's tasks
// (spec §4.E "List").
func (e *Engine) List(projectID string, in ListInput) (ListResult, error) {
	op := obslog.Begin("list")
	var out ListResult
	err := e.withLock(projectID, func() error {
		if err := e.ensureIntegrity(projectID); err != nil {
			return err
		}
		var err error
		out, err = listTasks(e.fs, e.root, projectID, in)
		return err
	})
	op.Done(err)
	return out, err
}

// Show returns a single task's metadata and, optionally, its body
// (spec §4.E "Show").
func (e *Engine) Show(projectID string, in ShowInput) (ShowResult, error) {
	if err := task.ValidateID(in.TaskID, "task_id"); err != nil {
		return ShowResult{}, err
	}
	op := obslog.Begin("show")
	var out ShowResult
	err := e.withLock(projectID, func() error {
		if err := e.ensureIntegrity(projectID); err != nil {
			return err
		}
		var err error
		out, err = showTask(e.fs, e.root, projectID, in)
		return err
	})
	op.Done(err)
	return out, err
}

// Move transitions a task to a new status (spec §4.F).
func (e *Engine) Move(projectID, taskID, newStatus string) (task.Metadata, error) {
	if err := task.ValidateID(taskID, "task_id"); err != nil {
		return task.Metadata{}, err
	}
	if err := task.ValidateStatus(newStatus); err != nil {
		return task.Metadata{}, err
	}
	op := obslog.Begin("move")
	var out task.Metadata
	err := e.withLock(projectID, func() error {
		if err := e.ensureIntegrity(projectID); err != nil {
			return err
		}
		var err error
		out, err = moveTask(e.fs, e.root, projectID, taskID, newStatus)
		return err
	})
	op.Done(err)
	return out, err
}

// SetBody replaces a task's body text (spec §4.G "Replace body").
func (e *Engine) SetBody(projectID, taskID, text string) (string, error) {
	if err := task.ValidateID(taskID, "task_id"); err != nil {
		return "", err
	}
	op := obslog.Begin("set-body")
	var out string
	err := e.withLock(projectID, func() error {
		if err := e.ensureIntegrity(projectID); err != nil {
			return err
		}
		var err error
		out, err = setBody(e.fs, e.root, projectID, taskID, text)
		return err
	})
	op.Done(err)
	return out, err
}

// MetaUpdate patches a task's metadata (spec §4.G "Patch metadata").
func (e *Engine) MetaUpdate(projectID, taskID string, patch MetaPatch) (string, []string, []string, error) {
	if err := task.ValidateID(taskID, "task_id"); err != nil {
		return "", nil, nil, err
	}
	op := obslog.Begin("meta-update")
	var updatedAt string
	var setKeys, unsetKeys []string
	err := e.withLock(projectID, func() error {
		if err := e.ensureIntegrity(projectID); err != nil {
			return err
		}
		var err error
		updatedAt, setKeys, unsetKeys, err = metaUpdate(e.fs, e.root, projectID, taskID, patch)
		return err
	})
	op.Done(err)
	return updatedAt, setKeys, unsetKeys, err
}

// IntegrityCheck reports (and, if fix is set, repairs) a project's
// on-disk consistency (spec §4.H). Unlike the other Engine methods, it
// never errors out on issues it found — the report itself communicates
// that via OK/Issues.
func (e *Engine) IntegrityCheck(projectID string, fix bool) (IntegrityReport, error) {
	if err := task.ValidateID(projectID, "project_id"); err != nil {
		return IntegrityReport{}, err
	}

	op := obslog.Begin("integrity-check")
	var recovered bool
	var found, issues, fixed []map[string]any
	err := e.withLock(projectID, func() error {
		txp, err := txPath(e.root, projectID)
		if err != nil {
			return err
		}
		if exists, _ := afero.Exists(e.fs, txp); exists {
			if err := recoverMove(e.fs, e.root, projectID); err != nil {
				return err
			}
			recovered = true
		}
		var runErr error
		found, issues, fixed, runErr = runIntegrityCheck(e.fs, e.root, projectID, fix)
		return runErr
	})
	op.Done(err)
	if err != nil {
		return IntegrityReport{}, err
	}

	return IntegrityReport{
		OK:        len(issues) == 0,
		ProjectID: projectID,
		Recovered: recovered,
		Fixed:     fixed,
		Issues:    issues,
		Found:     found,
	}, nil
}
