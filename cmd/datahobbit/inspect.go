package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/TFMV/datahobbit/pkg/generate"
	"github.com/TFMV/datahobbit/pkg/inspect"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/spf13/cobra"
)

// InspectOptions represents the options for the inspect command.
type InspectOptions struct {
	SampleRows int
	Delimiter  string
	SchemaPath string
	JSON       bool
}

func newInspectCommand() *cobra.Command {
	options := &InspectOptions{SampleRows: inspect.DefaultSampleRows}

	cmd := &cobra.Command{
		Use:   "inspect [flags] FILE...",
		Short: "Summarize generated files",
		Long: `The inspect command reads back Parquet, Arrow IPC, CSV and JSON lines files
and prints their row counts, columns and a few sample rows.

The format is picked from the file extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, options, args)
		},
	}

	cmd.Flags().IntVar(&options.SampleRows, "sample", options.SampleRows, "Number of sample rows to show")
	cmd.Flags().StringVarP(&options.Delimiter, "delimiter", "d", "", "Field delimiter of delimited files (default by extension)")
	cmd.Flags().StringVar(&options.SchemaPath, "schema", "", "Schema used to type delimited columns")
	cmd.Flags().BoolVar(&options.JSON, "json", false, "Print summaries as JSON")

	return cmd
}

// runInspect executes the inspect command with the given options.
func runInspect(cmd *cobra.Command, options *InspectOptions, paths []string) error {
	opts := []inspect.Option{inspect.WithSampleRows(options.SampleRows)}
	if options.Delimiter != "" {
		d, err := generate.ParseDelimiter(options.Delimiter)
		if err != nil {
			return err
		}
		opts = append(opts, inspect.WithDelimiter(rune(d)))
	}
	if options.SchemaPath != "" {
		s, err := schema.Load(options.SchemaPath)
		if err != nil {
			return err
		}
		opts = append(opts, inspect.WithSchema(s))
	}

	summaries, err := inspect.Files(cmd.Context(), paths, opts...)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if options.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	for _, sum := range summaries {
		printSummary(w, sum)
	}
	return nil
}

func printSummary(w io.Writer, sum *inspect.Summary) {
	fmt.Fprintf(w, "File: %s\n", sum.Path)
	fmt.Fprintf(w, "  Format: %s\n", sum.Format)
	fmt.Fprintf(w, "  Rows: %d\n", sum.Rows)
	if sum.RowGroups > 0 {
		fmt.Fprintf(w, "  Row groups: %d\n", sum.RowGroups)
	}
	fmt.Fprintf(w, "  Bytes: %d\n", sum.Bytes)
	if sum.Compression != "" {
		fmt.Fprintf(w, "  Compression: %s\n", sum.Compression)
	}

	fmt.Fprintln(w, "  Columns:")
	for i, col := range sum.Columns {
		fmt.Fprintf(w, "    %d: %s (%s)", i, col.Name, col.Type)
		if col.Tag != "" {
			fmt.Fprintf(w, " [%s]", col.Tag)
		}
		fmt.Fprintln(w)
	}

	if len(sum.Sample) > 0 {
		fmt.Fprintln(w, "  Sample:")
		for i, row := range sum.Sample {
			cells := make([]string, len(row))
			for j, v := range row {
				if v == nil {
					cells[j] = "NULL"
					continue
				}
				cells[j] = fmt.Sprint(v)
			}
			fmt.Fprintf(w, "    Row %d: [%s]\n", i, strings.Join(cells, ", "))
		}
	}
	fmt.Fprintln(w)
}
