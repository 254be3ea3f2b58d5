package cli

import "github.com/spf13/cobra"

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move PROJECT_ID TASK_ID NEW_STATUS",
		Short: "Move a task to a new status",
		Args:  cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				meta, err := engine.Move(args[0], args[1], args[2])
				if err != nil {
					return nil, err
				}
				metaOut := meta.ToMap()
				return map[string]any{
					"ok": true, "project_id": args[0], "task_id": args[1],
					"status": args[2], "meta": metaOut,
				}, nil
			})
		},
	}
}
