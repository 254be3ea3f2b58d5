package cli

import (
	"github.com/spf13/cobra"

	"github.com/ttrackhq/ttrack/internal/core"
)

func newAddCmd() *cobra.Command {
	var (
		taskID   string
		status   string
		body     string
		tags     string
		assignee string
		priority string
		dueDate  string
	)

	cmd := &cobra.Command{
		Use:   "add PROJECT_ID TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				in := core.AddTaskInput{
					Title:    args[1],
					TaskID:   taskID,
					Status:   status,
					Body:     body,
					Assignee: assignee,
					Priority: priority,
					DueDate:  dueDate,
				}
				if tags != "" {
					in.Tags = splitNonEmpty(tags, ",")
				}
				result, err := engine.Add(args[0], in)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"ok": true, "project_id": result.ProjectID, "task_id": result.TaskID,
					"status": result.Status, "title": result.Title,
				}, nil
			})
		},
	}

	cmd.Flags().StringVar(&taskID, "task-id", "", "explicit task id (must match the title-derived one)")
	cmd.Flags().StringVar(&status, "status", "", "initial status (defaults to the project's first status)")
	cmd.Flags().StringVar(&body, "body", "", "initial body text")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (P0-P3)")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "ISO 8601 date or date-time")
	return cmd
}
