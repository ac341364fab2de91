package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/generate"
	"github.com/TFMV/datahobbit/pkg/progress"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/TFMV/datahobbit/report"
	"github.com/TFMV/datahobbit/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// GenerateOptions holds the flags of the generate command that are not
// backed by configuration.
type GenerateOptions struct {
	Records    int64
	Unordered  bool
	ReportPath string
	Verify     bool
}

func newGenerateCommand(c *cli) *cobra.Command {
	options := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [flags] SCHEMA OUTPUT",
		Short: "Generate a synthetic dataset from a schema",
		Long: `The generate command produces synthetic rows for every column of SCHEMA.

For csv and json output, OUTPUT is the file written. For parquet and arrow
output, OUTPUT is a prefix: files are named OUTPUT_0.parquet, OUTPUT_1.parquet
and so on, each closed once it reaches --max-file-size.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, c, options, args[0], args[1])
		},
	}

	cmd.Flags().Int64VarP(&options.Records, "records", "n", 0, "Number of records to generate")
	cmd.Flags().BoolVar(&options.Unordered, "unordered", false, "Write chunks in completion order instead of row order")
	cmd.Flags().StringVar(&options.ReportPath, "report", "", "Write a run report (.json or .html)")
	cmd.Flags().BoolVar(&options.Verify, "verify", false, "Read the output back and check it against the schema")
	_ = cmd.MarkFlagRequired("records")

	cmd.Flags().StringP("format", "f", "csv", "Output format (csv, json, parquet, arrow)")
	cmd.Flags().StringP("delimiter", "d", ",", "Field delimiter for csv output (a single character, or \\t)")
	cmd.Flags().Int64("max-file-size", generate.DefaultMaxFileSize, "Size in bytes at which columnar files roll over")
	cmd.Flags().IntP("batch-size", "b", generate.DefaultBatchSize, "Rows per columnar batch")
	cmd.Flags().Int("chunk-size", 10000, "Rows per parallel chunk for line output")
	cmd.Flags().Int("workers", 0, "Number of worker goroutines (0 uses every CPU)")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 picks one at random)")
	cmd.Flags().String("compression", "none", "Compression codec (none, snappy, gzip, zstd, brotli, lz4)")
	cmd.Flags().String("progress", progress.KindBar, "Progress display (bar, spinner, none)")

	for key, flag := range map[string]string{
		"generate.format":        "format",
		"generate.delimiter":     "delimiter",
		"generate.max_file_size": "max-file-size",
		"generate.batch_size":    "batch-size",
		"generate.chunk_size":    "chunk-size",
		"generate.workers":       "workers",
		"generate.seed":          "seed",
		"generate.compression":   "compression",
		"generate.progress":      "progress",
	} {
		_ = c.v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	return cmd
}

// runGenerate executes the generate command.
func runGenerate(cmd *cobra.Command, c *cli, options *GenerateOptions, schemaPath, output string) error {
	gc := c.cfg.Generate

	delimiter, err := generate.ParseDelimiter(gc.Delimiter)
	if err != nil {
		return err
	}
	unordered := !gc.Ordered
	if cmd.Flags().Changed("unordered") {
		unordered = options.Unordered
	}

	reporter, err := progress.New(gc.Progress, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// Set up context with signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := generate.Request{
		SchemaPath:  schemaPath,
		Output:      output,
		Format:      gc.Format,
		Records:     options.Records,
		Delimiter:   delimiter,
		MaxFileSize: gc.MaxFileSize,
		BatchSize:   gc.BatchSize,
		ChunkSize:   gc.ChunkSize,
		Workers:     gc.Workers,
		Seed:        gc.Seed,
		Compression: gc.Compression,
		Unordered:   unordered,
	}
	c.log.Info("Starting generation",
		zap.String("schema", schemaPath),
		zap.String("output", output),
		zap.String("format", req.Format),
		zap.Int64("records", req.Records))

	run, err := generate.Run(ctx, req, generate.WithLogger(c.log), generate.WithProgress(reporter))
	if err == nil && options.Verify {
		err = verifyRun(ctx, c, run, schemaPath)
	}
	if options.ReportPath != "" {
		if saveErr := report.Save(*run, options.ReportPath); saveErr != nil {
			c.log.Error("Failed to save run report", zap.String("path", options.ReportPath), zap.Error(saveErr))
			if err == nil {
				err = saveErr
			}
		}
	}
	if err != nil {
		if ctx.Err() != nil && cmd.Context().Err() == nil {
			return fmt.Errorf("generation interrupted: %w", err)
		}
		return err
	}

	printRunSummary(cmd, run)
	return nil
}

// verifyRun validates the files of run and fails when any check does not pass.
func verifyRun(ctx context.Context, c *cli, run *metrics.RunReport, schemaPath string) error {
	s, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}
	validator := validation.NewValidator(s, c.log)
	validator.Workers = c.cfg.Generate.Workers
	if err := validator.ValidateRun(ctx, run); err != nil {
		return err
	}
	return validationError(run.Validation)
}

func validationError(v *metrics.ValidationReport) error {
	if v.Passed {
		return nil
	}
	if failed := v.FailedFiles(); failed > 0 {
		return fmt.Errorf("validation failed: %d of %d files failed", failed, len(v.Files))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(v.Failures, "; "))
}

func printRunSummary(cmd *cobra.Command, run *metrics.RunReport) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Generated %d rows into %d file(s), %d bytes in %s\n",
		run.TotalRows, len(run.Files), run.Bytes, run.Duration)
	if run.Validation != nil {
		fmt.Fprintf(w, "Validation passed: %d rows read back\n", run.Validation.TotalRows)
	}
	for _, f := range run.Files {
		fmt.Fprintf(w, "  %s: %d rows", f.Path, f.Rows)
		if f.RowGroups > 0 {
			fmt.Fprintf(w, ", %d row groups", f.RowGroups)
		}
		fmt.Fprintf(w, ", %d bytes\n", f.Bytes)
	}
}
