// Package cli implements the ttrack command-line collaborator: a thin,
// JSON-stdout cobra command tree over internal/core.Engine (spec §6).
// Every command prints exactly one JSON object and maps a returned
// *task.Error to the process exit code named in the error taxonomy.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttrackhq/ttrack/internal/core"
	"github.com/ttrackhq/ttrack/internal/domain/task"
	"github.com/ttrackhq/ttrack/internal/infra/fsutil"
)

// NewRoot builds the ttrack command tree.
func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ttrack",
		Short:         "File-backed task tracking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newMoveCmd())
	cmd.AddCommand(newMetaUpdateCmd())
	cmd.AddCommand(newSetBodyCmd())
	cmd.AddCommand(newIntegrityCheckCmd())
	return cmd
}

// newEngine resolves the configured root directory and returns an
// Engine backed by the real OS filesystem.
func newEngine() (*core.Engine, error) {
	root, err := fsutil.ResolveRoot()
	if err != nil {
		return nil, err
	}
	return core.NewEngine(fsutil.NewRootFS(), root), nil
}

// printJSON writes obj to stdout as a single line of JSON, matching
// the original CLI's "one JSON object per invocation" contract.
func printJSON(obj any) {
	data, err := json.Marshal(obj)
	if err != nil {
		data, _ = json.Marshal(map[string]any{"ok": false, "error": map[string]any{
			"code": string(task.KindUnexpected), "message": "failed to encode result", "details": map[string]any{},
		}})
	}
	fmt.Fprintln(os.Stdout, string(data))
}

// reportError renders err as the taxonomy's {"ok": false, "error": ...}
// shape to stdout and returns the process exit code it maps to.
func reportError(err error) int {
	if te, ok := err.(*task.Error); ok {
		details := te.Details
		if details == nil {
			details = map[string]any{}
		}
		printJSON(map[string]any{"ok": false, "error": map[string]any{
			"code": string(te.Kind), "message": te.Message, "details": details,
		}})
		return te.Kind.ExitCode()
	}
	printJSON(map[string]any{"ok": false, "error": map[string]any{
		"code": string(task.KindUnexpected), "message": "Unexpected error", "details": map[string]any{},
	}})
	return task.KindUnexpected.ExitCode()
}

// run executes fn, prints its JSON result or its error, and exits the
// process with the taxonomy's exit code on failure.
func run(fn func() (any, error)) error {
	result, err := fn()
	if err != nil {
		os.Exit(reportError(err))
		return nil
	}
	printJSON(result)
	return nil
}
