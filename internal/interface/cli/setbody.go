package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ttrackhq/ttrack/internal/domain/task"
)

func newSetBodyCmd() *cobra.Command {
	var (
		text string
		file string
	)

	cmd := &cobra.Command{
		Use:   "set-body PROJECT_ID TASK_ID",
		Short: "Replace a task's body text",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				textSet := c.Flags().Changed("text")
				fileSet := c.Flags().Changed("file")
				if textSet == fileSet {
					return nil, task.NewValidationError("Provide exactly one of --text or --file", nil)
				}

				body := text
				if fileSet {
					data, err := os.ReadFile(file)
					if err != nil {
						return nil, task.NewNotFoundError("Input file not found", map[string]any{"file": file})
					}
					body = string(data)
				}

				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				updatedAt, err := engine.SetBody(args[0], args[1], body)
				if err != nil {
					return nil, err
				}
				return map[string]any{"ok": true, "project_id": args[0], "task_id": args[1], "updated_at": updatedAt}, nil
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "body text")
	cmd.Flags().StringVar(&file, "file", "", "read body text from this file")
	return cmd
}
