// Package fsutil implements the durable storage primitives the core
// relies on: root resolution and safe path joins, atomic JSON/text
// writes, and the per-project exclusive lock.
package fsutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

const (
	rootEnvVar = "TASK_TRACKING_ROOT"
	defaultDir = ".task_tracking"
)

// ResolveRoot determines the project root from TASK_TRACKING_ROOT, or
// "<cwd>/.task_tracking" when unset. A configured root containing a
// parent-traversal ("..") segment, after normalizing both "/" and "\\"
// separators, is rejected with a VALIDATION_ERROR.
func ResolveRoot() (string, error) {
	root := os.Getenv(rootEnvVar)
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", task.NewUnexpectedError("failed to determine working directory", map[string]any{"error": err.Error()})
		}
		return filepath.Join(cwd, defaultDir), nil
	}
	if err := validateRootValue(root); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", task.NewUnexpectedError("failed to resolve root", map[string]any{"error": err.Error()})
	}
	return abs, nil
}

func validateRootValue(root string) error {
	normalized := strings.ReplaceAll(root, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			return task.NewValidationError(
				"TASK_TRACKING_ROOT must not contain '..' path segments",
				map[string]any{"env": rootEnvVar, "value": root},
			)
		}
	}
	return nil
}

// SafeJoin constructs root/parts..., resolving symlinks on both root and
// the candidate (when they exist on disk) and rejecting any candidate
// that escapes the resolved root — including the distinct-volume case on
// Windows, where filepath.Rel returns a path starting with "..".
func SafeJoin(root string, parts ...string) (string, error) {
	candidate := filepath.Join(append([]string{root}, parts...)...)

	rootReal, err := resolveExisting(root)
	if err != nil {
		return "", task.NewValidationError("Path escapes root", map[string]any{"path": candidate, "error": err.Error()})
	}
	candidateReal, err := resolveExisting(candidate)
	if err != nil {
		return "", task.NewValidationError("Path escapes root", map[string]any{"path": candidate, "error": err.Error()})
	}

	rel, err := filepath.Rel(rootReal, candidateReal)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", task.NewValidationError("Path escapes root", map[string]any{"path": candidate})
	}
	return candidate, nil
}

// resolveExisting resolves symlinks along path. If path (or some prefix
// of it) does not yet exist on disk — the common case for a
// not-yet-created status directory or file — it resolves symlinks on the
// longest existing prefix and rejoins the remaining, not-yet-existing
// suffix lexically.
func resolveExisting(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if real, err := filepath.EvalSymlinks(cleaned); err == nil {
		return real, nil
	}

	var suffix []string
	cur := cleaned
	for {
		if real, err := filepath.EvalSymlinks(cur); err == nil {
			full := real
			for i := len(suffix) - 1; i >= 0; i-- {
				full = filepath.Join(full, suffix[i])
			}
			return full, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached the filesystem root without finding an existing
			// prefix; nothing to resolve against.
			return cleaned, nil
		}
		suffix = append(suffix, filepath.Base(cur))
		cur = parent
	}
}
