package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/generate"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/TFMV/datahobbit/validation"
	"github.com/spf13/cobra"
)

// VerifyOptions represents the options for the verify command.
type VerifyOptions struct {
	Records     int64
	Delimiter   string
	MaxFailures int
	JSON        bool
}

func newVerifyCommand(c *cli) *cobra.Command {
	options := &VerifyOptions{Records: -1, MaxFailures: validation.DefaultMaxFailures}

	cmd := &cobra.Command{
		Use:   "verify [flags] SCHEMA FILE...",
		Short: "Check generated files against their schema",
		Long: `The verify command reads generated files back and checks them against SCHEMA:
column names and types, value ranges, and optionally the total row count.

It exits with an error when any check fails.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, c, options, args[0], args[1:])
		},
	}

	cmd.Flags().Int64VarP(&options.Records, "records", "n", options.Records, "Expected total row count (-1 skips the check)")
	cmd.Flags().StringVarP(&options.Delimiter, "delimiter", "d", "", "Field delimiter of delimited files (default by extension)")
	cmd.Flags().IntVar(&options.MaxFailures, "max-failures", options.MaxFailures, "Failure messages kept per file")
	cmd.Flags().BoolVar(&options.JSON, "json", false, "Print the validation report as JSON")

	return cmd
}

// runVerify executes the verify command with the given options.
func runVerify(cmd *cobra.Command, c *cli, options *VerifyOptions, schemaPath string, paths []string) error {
	s, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}

	validator := validation.NewValidator(s, c.log)
	validator.MaxFailures = options.MaxFailures
	validator.Workers = c.cfg.Generate.Workers
	if options.Delimiter != "" {
		d, err := generate.ParseDelimiter(options.Delimiter)
		if err != nil {
			return err
		}
		validator.Delimiter = rune(d)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := validator.Validate(ctx, paths, options.Records)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if options.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printValidation(cmd, report)
	}
	return validationError(report)
}

func printValidation(cmd *cobra.Command, report *metrics.ValidationReport) {
	w := cmd.OutOrStdout()
	for _, f := range report.Files {
		status := "PASS"
		if !f.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s %s (%s, %d rows)\n", status, f.Path, f.Format, f.Rows)
		for _, msg := range f.Failures {
			fmt.Fprintf(w, "  %s\n", msg)
		}
		if extra := f.Violations - int64(len(f.Failures)); extra > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", extra)
		}
	}
	for _, msg := range report.Failures {
		fmt.Fprintf(w, "FAIL %s\n", msg)
	}
	fmt.Fprintf(w, "Rows read: %d\n", report.TotalRows)
}
