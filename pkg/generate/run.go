package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/TFMV/datahobbit/pkg/writers"
	"github.com/TFMV/datahobbit/version"
)

// Request describes one generation run.
type Request struct {
	// SchemaPath locates the schema document. Ignored when Schema is set.
	SchemaPath string `json:"schema_path,omitempty"`

	// Schema is an inline schema.
	Schema *schema.Schema `json:"schema,omitempty"`

	// Output is the file path for line formats and the file prefix for
	// columnar formats.
	Output string `json:"output"`

	// Format is one of csv, json, parquet or arrow. Defaults to csv.
	Format string `json:"format,omitempty"`

	Records     int64  `json:"records"`
	Delimiter   byte   `json:"-"`
	MaxFileSize int64  `json:"max_file_size,omitempty"`
	BatchSize   int    `json:"batch_size,omitempty"`
	ChunkSize   int    `json:"chunk_size,omitempty"`
	Workers     int    `json:"workers,omitempty"`
	Seed        uint64 `json:"seed,omitempty"`
	Compression string `json:"compression,omitempty"`

	// Unordered delivers line-output chunks in completion order.
	Unordered bool `json:"unordered,omitempty"`
}

func (r Request) withDefaults() Request {
	if r.Format == "" {
		r.Format = core.FormatCSV
	}
	if r.Delimiter == 0 {
		r.Delimiter = ','
	}
	if r.MaxFileSize == 0 {
		r.MaxFileSize = DefaultMaxFileSize
	}
	return r
}

// Validate checks the request without touching the file system.
func (r Request) Validate() error {
	r = r.withDefaults()
	if r.Schema == nil && r.SchemaPath == "" {
		return errors.New("a schema or schema path is required")
	}
	if r.Output == "" {
		return errors.New("output is required")
	}
	if r.Records < 0 {
		return fmt.Errorf("records must not be negative: %d", r.Records)
	}
	if !writers.DefaultFactory.Supports(r.Format) {
		return fmt.Errorf("unsupported output format: %s", r.Format)
	}
	if err := writers.ValidateCompression(r.Format, r.Compression); err != nil {
		return err
	}
	if !writers.IsColumnar(r.Format) {
		return ValidateDelimiter(r.Delimiter)
	}
	if r.MaxFileSize < 0 {
		return fmt.Errorf("max file size must be positive: %d", r.MaxFileSize)
	}
	return nil
}

// Run executes req, dispatching on its format, and returns a report of the
// run. The report is returned even when the run fails.
func Run(ctx context.Context, req Request, opts ...Option) (*metrics.RunReport, error) {
	req = req.withDefaults()

	report := metrics.NewRunReport(metrics.RunConfig{
		SchemaPath:  req.SchemaPath,
		Output:      req.Output,
		Format:      req.Format,
		Records:     req.Records,
		MaxFileSize: req.MaxFileSize,
		BatchSize:   req.BatchSize,
		ChunkSize:   req.ChunkSize,
		Workers:     req.Workers,
		Seed:        req.Seed,
		Compression: req.Compression,
		Ordered:     !req.Unordered,
	}, version.GetVersion())
	if !writers.IsColumnar(req.Format) {
		report.Config.Delimiter = string(req.Delimiter)
	}

	err := run(ctx, req, report, opts)
	report.Finish(err)
	return report, err
}

func run(ctx context.Context, req Request, report *metrics.RunReport, opts []Option) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s := req.Schema
	if s == nil {
		loaded, err := schema.Load(req.SchemaPath)
		if err != nil {
			return err
		}
		s = loaded
	} else if err := s.Validate(); err != nil {
		return err
	}
	for _, col := range s.Columns {
		report.Columns = append(report.Columns, metrics.ColumnInfo{Name: col.Name, Type: string(col.Type)})
	}

	runOpts := append([]Option{
		WithFormat(req.Format),
		WithBatchSize(req.BatchSize),
		WithChunkSize(req.ChunkSize),
		WithWorkers(req.Workers),
		WithSeed(req.Seed),
		WithCompression(req.Compression),
		WithOrdered(!req.Unordered),
	}, opts...)

	if writers.IsColumnar(req.Format) {
		files, err := ColumnarSchema(ctx, s, req.Output, req.Records, req.MaxFileSize, runOpts...)
		for _, fs := range files {
			report.AddFile(fs)
		}
		return err
	}

	fs, err := DelimitedSchema(ctx, s, req.Output, req.Records, req.Delimiter, runOpts...)
	if err != nil {
		return err
	}
	report.AddFile(fs)
	return nil
}
