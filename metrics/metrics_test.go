package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

type codedError struct{}

func (codedError) Error() string { return "disk full" }
func (codedError) Code() string  { return "IO_ERROR" }

// TestRunReportAccumulates ensures files roll up into the report totals.
func TestRunReportAccumulates(t *testing.T) {
	report := NewRunReport(RunConfig{Output: "out", Format: "parquet", Records: 300}, "test")

	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Fatalf("Expected a UUID run ID, got %q: %v", report.RunID, err)
	}

	report.AddFile(FileStats{Index: 0, Path: "out_0.parquet", Rows: 200, RowGroups: 2, Bytes: 4096})
	report.AddFile(FileStats{Index: 1, Path: "out_1.parquet", Rows: 100, RowGroups: 1, Bytes: 2048})
	time.Sleep(time.Millisecond)
	report.Finish(nil)

	if report.TotalRows != 300 {
		t.Errorf("Expected 300 total rows, got %d", report.TotalRows)
	}
	if report.Bytes != 6144 {
		t.Errorf("Expected 6144 bytes, got %d", report.Bytes)
	}
	if !report.Status.Passed {
		t.Error("Expected run to pass")
	}
	if report.Duration <= 0 {
		t.Error("Expected a positive duration")
	}
	if report.RowsPerSecond() <= 0 {
		t.Error("Expected positive throughput")
	}
}

// TestRunReportFailure ensures errors are carried into the status.
func TestRunReportFailure(t *testing.T) {
	report := NewRunReport(RunConfig{}, "test")
	report.Finish(errors.Join(errors.New("write failed"), codedError{}))

	if report.Status.Passed {
		t.Fatal("Expected run to fail")
	}
	if report.Status.ErrorCode != "IO_ERROR" {
		t.Errorf("Expected error code IO_ERROR, got %q", report.Status.ErrorCode)
	}
	if report.Status.Message == "" {
		t.Error("Expected an error message")
	}
}

// TestJSONMetricsStore ensures that reports are correctly written to and read from a file.
func TestJSONMetricsStore(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test_metrics.json")

	store := &JSONMetricsStore{FilePath: testFile}
	testReport := NewRunReport(RunConfig{Output: "people.csv", Format: "csv", Records: 3}, "test")
	testReport.Columns = []ColumnInfo{{Name: "id", Type: "integer"}, {Name: "email", Type: "email"}}
	testReport.AddFile(FileStats{Path: "people.csv", Rows: 3, Bytes: 64})
	testReport.Finish(nil)

	if err := store.Save(*testReport); err != nil {
		t.Fatalf("Failed to save run report: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read back run report: %v", err)
	}

	var loadedReport RunReport
	if err := json.Unmarshal(data, &loadedReport); err != nil {
		t.Fatalf("Failed to deserialize saved report: %v", err)
	}

	if loadedReport.RunID != testReport.RunID {
		t.Errorf("Expected run ID %s, got %s", testReport.RunID, loadedReport.RunID)
	}
	if len(loadedReport.Columns) != 2 || loadedReport.Columns[1].Type != "email" {
		t.Errorf("Unexpected columns: %+v", loadedReport.Columns)
	}
	if loadedReport.TotalRows != 3 {
		t.Errorf("Expected 3 rows, got %d", loadedReport.TotalRows)
	}
}

// TestSaveWithContext ensures that context cancellation is respected when saving a report.
func TestSaveWithContext(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test_metrics.json")
	store := &JSONMetricsStore{FilePath: testFile}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Immediately cancel the context

	err := store.SaveWithContext(ctx, RunReport{})
	if err == nil {
		t.Fatalf("Expected context cancellation error, got nil")
	}
	if _, statErr := os.Stat(testFile); !os.IsNotExist(statErr) {
		t.Error("Expected no file to be written")
	}
}
