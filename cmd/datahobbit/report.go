package main

import (
	"fmt"

	"github.com/TFMV/datahobbit/report"
	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report RUN.json OUTPUT",
		Short: "Render a saved JSON run report",
		Long: `The report command re-renders a run report saved with generate --report.
The output format follows the OUTPUT extension: .html for HTML, JSON otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := report.ReportFromFilePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to load report %s: %w", args[0], err)
			}
			if err := report.Save(run, args[1]); err != nil {
				return fmt.Errorf("failed to write report %s: %w", args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report %s written to %s\n", run.RunID, args[1])
			return nil
		},
	}
}
