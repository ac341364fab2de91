package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/TFMV/datahobbit/pkg/generator"
	"github.com/spf13/cobra"
)

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the column types a schema may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tARROW TYPE")
			for _, tag := range generator.Tags() {
				dt, err := tag.ArrowType()
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", tag, dt)
			}
			return tw.Flush()
		},
	}
}
