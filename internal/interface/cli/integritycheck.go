package cli

import "github.com/spf13/cobra"

func newIntegrityCheckCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "integrity-check PROJECT_ID",
		Short: "Report (and optionally repair) a project's on-disk consistency",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return run(func() (any, error) {
				engine, err := newEngine()
				if err != nil {
					return nil, err
				}
				report, err := engine.IntegrityCheck(args[0], fix)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"ok": report.OK, "project_id": report.ProjectID, "recovered": report.Recovered,
					"fixed": nonNilMaps(report.Fixed), "issues": nonNilMaps(report.Issues), "found": nonNilMaps(report.Found),
				}, nil
			})
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "repair fixable issues in place")
	return cmd
}

func nonNilMaps(m []map[string]any) []map[string]any {
	if m == nil {
		return []map[string]any{}
	}
	return m
}
