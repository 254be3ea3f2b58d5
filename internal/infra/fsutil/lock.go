package fsutil

import (
	"encoding/json"
	"os"

	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

const lockFileName = ".lock"

// ProjectLock is a scoped, exclusive advisory lock on a project
// directory. Acquire never waits: on contention it fails immediately
// with a ConflictError (spec §5 — no polling loop).
type ProjectLock struct {
	fs      afero.Fs
	path    string
	held    bool
}

// NewProjectLock returns a lock scoped to projectDir's ".lock" file.
// projectDir must already have been resolved through SafeJoin.
func NewProjectLock(fs afero.Fs, projectDir string) *ProjectLock {
	return &ProjectLock{fs: fs, path: projectDir + string(os.PathSeparator) + lockFileName}
}

// Acquire creates the lock file exclusively, reclaiming it first if the
// recorded owner PID is no longer alive. It fails with NotFoundError if
// projectDir does not exist, and with ConflictError if the project is
// validly locked by another process (or the existing lock file is
// unparseable).
func (l *ProjectLock) Acquire(projectDir string) error {
	exists, err := afero.DirExists(l.fs, projectDir)
	if err != nil || !exists {
		return task.NewNotFoundError("Project not found", map[string]any{"path": projectDir})
	}

	if err := l.tryCreate(); err == nil {
		l.held = true
		return nil
	}

	rec, readErr := l.readLockRecord()
	if readErr != nil || pidAlive(rec.PID) {
		return task.NewConflictError("Project is locked", map[string]any{"lock": l.path})
	}

	// Stale lock: break it and retry exactly once.
	_ = l.fs.Remove(l.path)
	if err := l.tryCreate(); err != nil {
		return task.NewConflictError("Project is locked", map[string]any{"lock": l.path})
	}
	l.held = true
	return nil
}

func (l *ProjectLock) tryCreate() error {
	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	data, _ := json.Marshal(task.LockRecord{PID: os.Getpid()})
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = l.fs.Remove(l.path)
		if werr != nil {
			return werr
		}
		return cerr
	}
	return nil
}

func (l *ProjectLock) readLockRecord() (task.LockRecord, error) {
	var rec task.LockRecord
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Release removes the lock file if this ProjectLock holds it and does
// nothing otherwise, so it is safe to call even if Acquire failed or was
// never called.
func (l *ProjectLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	err := l.fs.Remove(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

