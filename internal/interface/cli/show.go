package cli

import (
	"github.com/spf13/cobra"

	"github.com/ttrackhq/ttrack/internal/core"
)

func newShowCmd() *cobra.Command {
	var (
		includeBody  bool
		maxBodyChars int
		maxBodyLines int
	)

	cmd := &cobra.Command{
		Use:   "show PROJECT_ID TASK_ID",
		Short: "Show a task's metadata, and optionally its body",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				in := core.ShowInput{TaskID: args[1], IncludeBody: includeBody}
				if c.Flags().Changed("max-body-chars") {
					v := maxBodyChars
					in.MaxBodyChars = &v
				}
				if c.Flags().Changed("max-body-lines") {
					v := maxBodyLines
					in.MaxBodyLines = &v
				}
				result, err := engine.Show(args[0], in)
				if err != nil {
					return nil, err
				}
				out := map[string]any{
					"ok": true, "project_id": result.ProjectID, "task_id": result.TaskID,
					"status": result.Status, "meta": result.Meta,
				}
				if result.Body != nil {
					body := map[string]any{"text": result.Body.Text, "truncated": result.Body.Truncated}
					if result.Body.MaxBodyChars != nil {
						body["max_body_chars"] = *result.Body.MaxBodyChars
					}
					if result.Body.MaxBodyLines != nil {
						body["max_body_lines"] = *result.Body.MaxBodyLines
					}
					out["body"] = body
				}
				return out, nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeBody, "body", false, "include the task's body text")
	cmd.Flags().IntVar(&maxBodyChars, "max-body-chars", 0, "truncate body to this many characters")
	cmd.Flags().IntVar(&maxBodyLines, "max-body-lines", 0, "truncate body to this many lines")
	return cmd
}
