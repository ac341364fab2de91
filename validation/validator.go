// Package validation reads generated files back and checks them against the
// schema they were generated from.
package validation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/TFMV/datahobbit/pkg/generator"
	"github.com/TFMV/datahobbit/pkg/inspect"
	"github.com/TFMV/datahobbit/pkg/readers"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// DefaultMaxFailures is the number of failures recorded per file.
const DefaultMaxFailures = 10

// Validator manages the configuration and validation logic.
type Validator struct {
	Schema *schema.Schema

	// Format forces the file format. Empty picks one by extension.
	Format string

	// Delimiter separates fields of delimited files. Zero picks one by
	// extension.
	Delimiter rune

	// Workers bounds the files checked at once. Zero means one per CPU.
	Workers int

	// MaxFailures caps the failure messages kept per file. Every violation
	// is still counted.
	MaxFailures int

	// Logger for structured logging.
	Logger *zap.Logger

	Readers *readers.Factory
}

// NewValidator constructs a new Validator instance.
func NewValidator(s *schema.Schema, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		Schema:      s,
		MaxFailures: DefaultMaxFailures,
		Logger:      logger,
		Readers:     readers.DefaultFactory,
	}
}

// Validate checks every file concurrently and returns a detailed report.
// expectedRows is the row count the files should hold together; pass a
// negative value to skip that check. The error is reserved for files that
// cannot be read at all.
func (v *Validator) Validate(ctx context.Context, paths []string, expectedRows int64) (*metrics.ValidationReport, error) {
	startTime := time.Now()
	v.Logger.Info("Starting validation", zap.Int("files", len(paths)), zap.Int64("expected_rows", expectedRows))

	arrowSchema, err := v.Schema.ArrowSchema()
	if err != nil {
		return nil, err
	}

	workers := v.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]metrics.FileValidation, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			res, err := v.validateFile(gctx, path, arrowSchema)
			if err != nil {
				return fmt.Errorf("failed to validate %s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &metrics.ValidationReport{ExpectedRows: expectedRows, Files: results, Passed: true}
	for _, res := range results {
		report.TotalRows += res.Rows
		report.Passed = report.Passed && res.Passed
	}
	if expectedRows >= 0 && report.TotalRows != expectedRows {
		report.Failures = append(report.Failures,
			fmt.Sprintf("expected %d rows in total, found %d", expectedRows, report.TotalRows))
		report.Passed = false
	}

	v.Logger.Info("Validation completed",
		zap.Bool("passed", report.Passed),
		zap.Int64("rows", report.TotalRows),
		zap.Int("failed_files", report.FailedFiles()),
		zap.Duration("duration", time.Since(startTime)))
	return report, nil
}

// ValidateRun checks the files of a finished run and attaches the result to it.
func (v *Validator) ValidateRun(ctx context.Context, run *metrics.RunReport) error {
	paths := make([]string, len(run.Files))
	for i, f := range run.Files {
		paths[i] = f.Path
	}
	vc := *v
	if vc.Format == "" {
		vc.Format = run.Config.Format
	}
	if vc.Delimiter == 0 && len(run.Config.Delimiter) == 1 {
		vc.Delimiter = rune(run.Config.Delimiter[0])
	}
	report, err := vc.Validate(ctx, paths, run.Config.Records)
	if err != nil {
		return err
	}
	run.Validation = report
	return nil
}

// fileCheck accumulates the outcome of one file.
type fileCheck struct {
	res         metrics.FileValidation
	maxFailures int
}

func (c *fileCheck) failf(format string, a ...any) {
	c.res.Violations++
	if len(c.res.Failures) < c.maxFailures {
		c.res.Failures = append(c.res.Failures, fmt.Sprintf(format, a...))
	}
}

func (v *Validator) validateFile(ctx context.Context, path string, expected *arrow.Schema) (metrics.FileValidation, error) {
	format := v.Format
	if format == "" {
		var err error
		if format, err = inspect.Format(path); err != nil {
			return metrics.FileValidation{}, err
		}
	}
	delimiter := v.Delimiter
	if delimiter == 0 && strings.HasSuffix(strings.ToLower(path), ".tsv") {
		delimiter = '\t'
	}

	reader, err := v.Readers.Create(core.ReaderConfig{
		Format:    format,
		Path:      path,
		Schema:    expected,
		Delimiter: delimiter,
	})
	if err != nil {
		return metrics.FileValidation{}, err
	}
	defer reader.Close()

	check := &fileCheck{
		res:         metrics.FileValidation{Path: path, Format: format},
		maxFailures: v.MaxFailures,
	}

	schemaOK := true
	for {
		record, err := reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Text that does not parse as its column type is a content
			// failure, not a read failure.
			if format == core.FormatCSV || format == core.FormatJSON {
				check.failf("unreadable content: %v", err)
				break
			}
			return metrics.FileValidation{}, err
		}
		if check.res.Rows == 0 {
			schemaOK = v.checkSchema(check, record.Schema(), expected)
		}
		if schemaOK {
			v.checkValues(check, record, check.res.Rows)
		}
		check.res.Rows += record.NumRows()
	}

	if check.res.Rows == 0 && (format == core.FormatParquet || format == core.FormatArrow) {
		check.failf("file holds no rows")
	}
	check.res.Passed = check.res.Violations == 0

	v.Logger.Debug("Validated file",
		zap.String("path", path),
		zap.Int64("rows", check.res.Rows),
		zap.Int64("violations", check.res.Violations))
	return check.res, nil
}

// checkSchema compares column names, types and recorded type tags.
func (v *Validator) checkSchema(check *fileCheck, got, expected *arrow.Schema) bool {
	if got.NumFields() != expected.NumFields() {
		check.failf("expected %d columns, found %d", expected.NumFields(), got.NumFields())
		return false
	}
	ok := true
	for i, want := range expected.Fields() {
		field := got.Field(i)
		if field.Name != want.Name {
			check.failf("column %d: expected name %q, found %q", i, want.Name, field.Name)
			ok = false
		}
		if !arrow.TypeEqual(field.Type, want.Type) {
			check.failf("column %s: expected type %s, found %s", want.Name, want.Type, field.Type)
			ok = false
			continue
		}
		if idx := field.Metadata.FindKey(schema.TypeMetadataKey); idx >= 0 {
			if tag := field.Metadata.Values()[idx]; tag != string(v.Schema.Columns[i].Type) {
				check.failf("column %s: expected type tag %s, found %s", want.Name, v.Schema.Columns[i].Type, tag)
			}
		}
	}
	return ok
}

// checkValues applies each column's value rules. offset is the file row of
// the record's first row.
func (v *Validator) checkValues(check *fileCheck, record arrow.Record, offset int64) {
	for i, col := range v.Schema.Columns {
		arr := record.Column(i)
		for row := 0; row < arr.Len(); row++ {
			if arr.IsNull(row) {
				check.failf("column %s row %d: missing value", col.Name, offset+int64(row))
			}
		}

		switch a := arr.(type) {
		case *array.Int64:
			for row := 0; row < a.Len(); row++ {
				if val := a.Value(row); a.IsValid(row) && (val < 0 || val >= generator.IntegerMax) {
					check.failf("column %s row %d: %d outside [0, %d)", col.Name, offset+int64(row), val, generator.IntegerMax)
				}
			}
		case *array.Float64:
			for row := 0; row < a.Len(); row++ {
				if val := a.Value(row); a.IsValid(row) && (val < 0 || val >= generator.FloatMax) {
					check.failf("column %s row %d: %g outside [0, %g)", col.Name, offset+int64(row), val, generator.FloatMax)
				}
			}
		case *array.String:
			for row := 0; row < a.Len(); row++ {
				if !a.IsValid(row) {
					continue
				}
				if msg := checkText(col.Type, a.Value(row)); msg != "" {
					check.failf("column %s row %d: %s", col.Name, offset+int64(row), msg)
				}
			}
		}
	}
}

// checkText returns a description of what is wrong with a text value, or "".
func checkText(tag schema.TypeTag, value string) string {
	if value == "" {
		return "empty value"
	}
	switch tag {
	case schema.Email:
		if !strings.Contains(value, "@") {
			return fmt.Sprintf("%q is not an email address", value)
		}
	case schema.Password:
		if n := len(value); n < generator.PasswordMinLen || n >= generator.PasswordMaxLen {
			return fmt.Sprintf("password length %d outside [%d, %d)", n, generator.PasswordMinLen, generator.PasswordMaxLen)
		}
	}
	return ""
}
