package fsutil

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

// NewRootFS returns the production filesystem backend: the real OS
// filesystem. Tests may substitute afero.NewMemMapFs() for anything that
// doesn't need to exercise rename-durability or fsync semantics.
func NewRootFS() afero.Fs {
	return afero.NewOsFs()
}

var ulidEntropy = ulid.Monotonic(rand.Reader, 0)

// tempName returns a unique, sortable temp-file name in the given
// directory for the given final path. The ULID suffix is purely a
// debugging aid (temp files never survive into committed state); it lets
// concurrent temp files in the same directory sort by creation order.
func tempName(dir, finalPath string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy)
	return filepath.Join(dir, "."+filepath.Base(finalPath)+".tmp-"+id.String())
}

// WriteJSONAtomic encodes v as JSON (stable key order via Go's native map
// ordering, no non-ASCII escaping) and writes it to path via temp-file +
// rename + directory fsync. A successful return guarantees readers
// observe either the previous committed contents or the new contents,
// never a torn write.
func WriteJSONAtomic(fs afero.Fs, path string, v any) error {
	data, err := marshalNoEscape(v)
	if err != nil {
		return task.NewUnexpectedError("failed to encode JSON", map[string]any{"path": path, "error": err.Error()})
	}
	return writeAtomic(fs, path, data)
}

// WriteTextAtomic writes arbitrary UTF-8 text to path via the same
// temp-file + rename + directory fsync sequence as WriteJSONAtomic.
func WriteTextAtomic(fs afero.Fs, path string, text string) error {
	return writeAtomic(fs, path, []byte(text))
}

func marshalNoEscape(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return task.NewUnexpectedError("failed to create directory", map[string]any{"dir": dir, "error": err.Error()})
	}

	tmp := tempName(dir, path)
	f, err := fs.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return task.NewUnexpectedError("failed to create temp file", map[string]any{"path": tmp, "error": err.Error()})
	}

	cleanupTmp := func() { _ = fs.Remove(tmp) }

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanupTmp()
		return task.NewUnexpectedError("failed to write temp file", map[string]any{"path": tmp, "error": err.Error()})
	}

	// Best-effort durability: failure to fsync is tolerated silently.
	_ = f.Sync()

	if err := f.Close(); err != nil {
		cleanupTmp()
		return task.NewUnexpectedError("failed to close temp file", map[string]any{"path": tmp, "error": err.Error()})
	}

	if err := fs.Rename(tmp, path); err != nil {
		cleanupTmp()
		return task.NewUnexpectedError("failed to rename temp file", map[string]any{"from": tmp, "to": path, "error": err.Error()})
	}

	FsyncDir(fs, dir)
	return nil
}

// FsyncDir best-effort syncs a directory's metadata so a preceding rename
// is durably visible after a crash. Failures (including filesystems or
// backends, like afero.MemMapFs, that don't support directory fsync) are
// silently ignored — atomicity comes from the rename, not from this call.
func FsyncDir(fs afero.Fs, dir string) {
	d, err := fs.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}

// ReadJSON decodes the JSON object stored at path into v. A missing file
// or malformed JSON is reported as a structured IntegrityError, per spec
// §4.B.
func ReadJSON(fs afero.Fs, path string, v any) error {
	data, err := ReadJSONRaw(fs, path)
	if err != nil {
		return err
	}
	encoded, _ := json.Marshal(data)
	if err := json.Unmarshal(encoded, v); err != nil {
		return task.NewIntegrityError("Invalid JSON", map[string]any{"path": path})
	}
	return nil
}

// ReadJSONRaw decodes the JSON value stored at path into an untyped
// any (object, array, string, number, bool, or nil), for callers — like
// the integrity checker — that must tolerate a metadata slot holding
// something other than a JSON object.
func ReadJSONRaw(fs afero.Fs, path string) (any, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return nil, task.NewIntegrityError("Missing required file", map[string]any{"path": path, "reason": "missing"})
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, task.NewIntegrityError("Missing required file", map[string]any{"path": path})
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, task.NewIntegrityError("Invalid JSON", map[string]any{"path": path})
	}
	return v, nil
}
