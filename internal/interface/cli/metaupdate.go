package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttrackhq/ttrack/internal/core"
	"github.com/ttrackhq/ttrack/internal/domain/task"
)

// rawPatch is the on-the-wire shape of a meta-update patch: a JSON
// object with an optional "set" object and an optional "unset" array.
type rawPatch struct {
	Set   map[string]any `json:"set"`
	Unset []string       `json:"unset"`
}

func newMetaUpdateCmd() *cobra.Command {
	var (
		patchJSON  string
		patchStdin bool
	)

	cmd := &cobra.Command{
		Use:   "meta-update PROJECT_ID TASK_ID",
		Short: "Patch a task's metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				if (patchJSON != "") == patchStdin {
					return nil, task.NewValidationError("Provide exactly one of --patch-json or --patch-stdin", nil)
				}
				raw := []byte(patchJSON)
				if patchStdin {
					data, err := io.ReadAll(os.Stdin)
					if err != nil {
						return nil, task.NewUnexpectedError("failed to read stdin", map[string]any{"error": err.Error()})
					}
					raw = data
				}

				var p rawPatch
				if err := json.Unmarshal(raw, &p); err != nil {
					return nil, task.NewValidationError("Invalid JSON patch", nil)
				}

				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				updatedAt, setKeys, unsetKeys, err := engine.MetaUpdate(args[0], args[1], core.MetaPatch{Set: p.Set, Unset: p.Unset})
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"ok": true, "project_id": args[0], "task_id": args[1], "updated_at": updatedAt,
					"changed": map[string]any{"set": nonNil(setKeys), "unset": nonNil(unsetKeys)},
				}, nil
			})
		},
	}

	cmd.Flags().StringVar(&patchJSON, "patch-json", "", "JSON patch object")
	cmd.Flags().BoolVar(&patchStdin, "patch-stdin", false, "read the JSON patch object from stdin")
	return cmd
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
