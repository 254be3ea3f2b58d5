package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ttrackhq/ttrack/internal/core"
	"github.com/ttrackhq/ttrack/internal/interface/cli/cliconfig"
)

func newListCmd() *cobra.Command {
	var (
		status   string
		tag      string
		assignee string
		priority string
		fields   string
		limit    int
		offset   int
		sortBy   string
		asc      bool
		desc     bool
	)

	cmd := &cobra.Command{
		Use:   "list PROJECT_ID",
		Short: "List a project's tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				effectiveDesc := desc
				if asc {
					effectiveDesc = false
				}
				in := core.ListInput{
					Status: status, Tag: tag, Assignee: assignee, Priority: priority,
					Limit: limit, Offset: offset, Sort: sortBy, Desc: effectiveDesc,
				}
				if fields != "" {
					in.Fields = splitNonEmpty(fields, ",")
				}
				result, err := engine.List(args[0], in)
				if err != nil {
					return nil, err
				}
				return map[string]any{"ok": true, "project_id": result.ProjectID, "count": result.Count, "items": result.Items}, nil
			})
		},
	}

	defaults, _ := cliconfig.Load()
	cmd.Flags().StringVar(&status, "status", "", "restrict to one status")
	cmd.Flags().StringVar(&tag, "tag", "", "restrict to tasks carrying this tag")
	cmd.Flags().StringVar(&assignee, "assignee", "", "restrict to tasks assigned to this person")
	cmd.Flags().StringVar(&priority, "priority", "", "restrict to this priority")
	cmd.Flags().StringVar(&fields, "fields", strings.Join(defaults.ListFields, ","), "comma-separated output fields")
	cmd.Flags().IntVar(&limit, "limit", defaults.ListLimit, "max results (1-1000)")
	cmd.Flags().IntVar(&offset, "offset", 0, "results to skip")
	cmd.Flags().StringVar(&sortBy, "sort", defaults.ListSort, "sort field")
	cmd.Flags().BoolVar(&desc, "desc", true, "sort descending (default)")
	cmd.Flags().BoolVar(&asc, "asc", false, "sort ascending")
	return cmd
}
