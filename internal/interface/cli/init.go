package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ttrackhq/ttrack/internal/interface/cli/cliconfig"
)

func newInitCmd() *cobra.Command {
	var statuses string

	cmd := &cobra.Command{
		Use:   "init-project PROJECT_ID",
		Short: "Create a new project with one index per status",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				list := splitNonEmpty(statuses, ",")
				result, err := engine.Init(args[0], list)
				if err != nil {
					return nil, err
				}
				return map[string]any{"ok": true, "project_id": result.ProjectID, "statuses": result.Statuses}, nil
			})
		},
	}

	defaults, _ := cliconfig.Load()
	cmd.Flags().StringVar(&statuses, "statuses", strings.Join(defaults.InitStatuses, ","), "comma-separated status list")
	return cmd
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
