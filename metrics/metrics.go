// Package metrics records what a generation run produced.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// -----------------------------
// Run Types
// -----------------------------

// FileStats describes one emitted output file.
type FileStats struct {
	Index     int    `json:"index"`
	Path      string `json:"path"`
	Rows      int64  `json:"rows"`
	RowGroups int    `json:"row_groups"`
	Bytes     int64  `json:"bytes"`
}

// ColumnInfo names a generated column and its type tag.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// RunConfig captures the parameters a run was started with.
type RunConfig struct {
	SchemaPath  string `json:"schema_path,omitempty"`
	Output      string `json:"output"`
	Format      string `json:"format"`
	Records     int64  `json:"records"`
	Delimiter   string `json:"delimiter,omitempty"`
	MaxFileSize int64  `json:"max_file_size,omitempty"`
	BatchSize   int    `json:"batch_size,omitempty"`
	ChunkSize   int    `json:"chunk_size,omitempty"`
	Workers     int    `json:"workers,omitempty"`
	Seed        uint64 `json:"seed,omitempty"`
	Compression string `json:"compression,omitempty"`
	Ordered     bool   `json:"ordered"`
}

// RunReport aggregates the outcome of one generation run.
type RunReport struct {
	RunID     string        `json:"run_id"`
	Version   string        `json:"version"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Config    RunConfig     `json:"config"`
	Columns   []ColumnInfo  `json:"columns"`
	Files     []FileStats   `json:"files"`
	TotalRows int64         `json:"total_rows"`
	Bytes     int64         `json:"bytes"`
	Status    RunStatus     `json:"status"`

	// Validation holds the read-back checks of the files, when they ran.
	Validation *ValidationReport `json:"validation,omitempty"`
}

// RunStatus holds the final status of a run.
type RunStatus struct {
	Passed    bool      `json:"passed"`
	ErrorCode string    `json:"error_code,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRunReport starts a report for cfg with a fresh run ID.
func NewRunReport(cfg RunConfig, version string) *RunReport {
	return &RunReport{
		RunID:     uuid.NewString(),
		Version:   version,
		StartTime: time.Now(),
		Config:    cfg,
	}
}

// AddFile records an emitted file.
func (r *RunReport) AddFile(fs FileStats) {
	r.Files = append(r.Files, fs)
	r.TotalRows += fs.Rows
	r.Bytes += fs.Bytes
}

// Finish stamps the end time and status. A nil err marks the run as passed.
func (r *RunReport) Finish(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Status = RunStatus{Passed: err == nil, Timestamp: r.EndTime}
	if err != nil {
		r.Status.Message = err.Error()
		var coded interface{ Code() string }
		if errors.As(err, &coded) {
			r.Status.ErrorCode = coded.Code()
		}
	}
}

// RowsPerSecond returns the generation throughput.
func (r *RunReport) RowsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.TotalRows) / r.Duration.Seconds()
}

// -----------------------------
// Validation Types
// -----------------------------

// ValidationReport records how generated files compare with their schema.
type ValidationReport struct {
	// ExpectedRows is the row count the files should hold together; a
	// negative value skips the count check.
	ExpectedRows int64            `json:"expected_rows"`
	TotalRows    int64            `json:"total_rows"`
	Files        []FileValidation `json:"files"`
	Failures     []string         `json:"failures,omitempty"`
	Passed       bool             `json:"passed"`
}

// FileValidation is the outcome of checking one file.
type FileValidation struct {
	Path       string   `json:"path"`
	Format     string   `json:"format"`
	Rows       int64    `json:"rows"`
	Violations int64    `json:"violations"`
	Failures   []string `json:"failures,omitempty"`
	Passed     bool     `json:"passed"`
}

// FailedFiles returns the number of files that did not pass.
func (v *ValidationReport) FailedFiles() int {
	n := 0
	for _, f := range v.Files {
		if !f.Passed {
			n++
		}
	}
	return n
}

// -----------------------------
// Metrics Storage
// -----------------------------

// MetricsStore abstracts run report storage.
type MetricsStore interface {
	Save(run RunReport) error
	SaveWithContext(ctx context.Context, run RunReport) error
}

// JSONMetricsStore stores reports as JSON.
type JSONMetricsStore struct {
	FilePath string
}

func (j *JSONMetricsStore) Save(run RunReport) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if j.FilePath != "" {
		return os.WriteFile(j.FilePath, data, 0644)
	}
	fmt.Println(string(data))
	return nil
}

func (j *JSONMetricsStore) SaveWithContext(ctx context.Context, run RunReport) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return j.Save(run)
	}
}
