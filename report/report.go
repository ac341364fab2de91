// Package report renders run reports as JSON or HTML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/datahobbit/metrics"
)

// -----------------------------
// Report Generator Interfaces
// -----------------------------

// ReportGenerator defines the methods for generating reports.
type ReportGenerator interface {
	GenerateRunReport(run metrics.RunReport) ([]byte, error)
	SaveReportToFile(run metrics.RunReport, filePath string) error
}

// ForPath picks a generator by file extension: .html and .htm produce HTML,
// anything else JSON.
func ForPath(filePath string) ReportGenerator {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".html", ".htm":
		return &HTMLReportGenerator{}
	default:
		return &JSONReportGenerator{}
	}
}

// Save writes run to filePath in the format its extension selects.
func Save(run metrics.RunReport, filePath string) error {
	return ForPath(filePath).SaveReportToFile(run, filePath)
}

// -----------------------------
// JSON Report Generator
// -----------------------------

// JSONReportGenerator generates JSON reports.
type JSONReportGenerator struct{}

// GenerateRunReport serializes the RunReport to JSON.
func (j *JSONReportGenerator) GenerateRunReport(run metrics.RunReport) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}

// SaveReportToFile saves the JSON report to a file.
func (j *JSONReportGenerator) SaveReportToFile(run metrics.RunReport, filePath string) error {
	store := &metrics.JSONMetricsStore{FilePath: filePath}
	return store.Save(run)
}

// -----------------------------
// HTML Report Generator
// -----------------------------

// HTMLReportGenerator generates HTML reports.
type HTMLReportGenerator struct{}

// HTML template for the report.
const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Generation Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f4f4f4; }
        .status-pass { color: green; }
        .status-fail { color: red; }
    </style>
</head>
<body>
    <h1>Generation Report</h1>
    <p><strong>Run ID:</strong> {{.RunID}}</p>
    <p><strong>Version:</strong> {{.Version}}</p>
    <p><strong>Format:</strong> {{.Config.Format}}</p>
    <p><strong>Output:</strong> {{.Config.Output}}</p>
    <p><strong>Started:</strong> {{.StartTime}}</p>
    <p><strong>Duration:</strong> {{.Duration}}</p>
    <p><strong>Status:</strong> {{if .Status.Passed}}<span class="status-pass">PASS</span>{{else}}<span class="status-fail">FAIL</span> {{.Status.Message}}{{end}}</p>

    <h2>Columns</h2>
    <table>
        <tr>
            <th>Name</th>
            <th>Type</th>
        </tr>
        {{range .Columns}}
        <tr>
            <td>{{.Name}}</td>
            <td>{{.Type}}</td>
        </tr>
        {{end}}
    </table>

    <h2>Files</h2>
    <table>
        <tr>
            <th>Index</th>
            <th>Path</th>
            <th>Rows</th>
            <th>Row Groups</th>
            <th>Bytes</th>
        </tr>
        {{range .Files}}
        <tr>
            <td>{{.Index}}</td>
            <td>{{.Path}}</td>
            <td>{{.Rows}}</td>
            <td>{{.RowGroups}}</td>
            <td>{{.Bytes}}</td>
        </tr>
        {{end}}
    </table>

    <p><strong>Total Rows:</strong> {{.TotalRows}}</p>
    <p><strong>Total Bytes:</strong> {{.Bytes}}</p>
    <p><strong>Rows per Second:</strong> {{printf "%.0f" .RowsPerSecond}}</p>

    {{with .Validation}}
    <h2>Validation</h2>
    <p><strong>Result:</strong> {{if .Passed}}<span class="status-pass">PASS</span>{{else}}<span class="status-fail">FAIL</span>{{end}}</p>
    <p><strong>Rows Read:</strong> {{.TotalRows}}{{if ge .ExpectedRows 0}} of {{.ExpectedRows}}{{end}}</p>
    {{range .Failures}}<p class="status-fail">{{.}}</p>{{end}}
    <table>
        <tr>
            <th>Path</th>
            <th>Rows</th>
            <th>Violations</th>
            <th>Result</th>
        </tr>
        {{range .Files}}
        <tr>
            <td>{{.Path}}</td>
            <td>{{.Rows}}</td>
            <td>{{.Violations}}</td>
            <td>{{if .Passed}}<span class="status-pass">PASS</span>{{else}}<span class="status-fail">FAIL</span> {{range .Failures}}{{.}}<br>{{end}}{{end}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}

    <footer>
        <p>Generated on {{.EndTime}}</p>
    </footer>
</body>
</html>
`

var htmlReport = template.Must(template.New("report").Parse(htmlTemplate))

// GenerateRunReport generates an HTML report from the run.
func (h *HTMLReportGenerator) GenerateRunReport(run metrics.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, &run); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveReportToFile saves the HTML report to a file.
func (h *HTMLReportGenerator) SaveReportToFile(run metrics.RunReport, filePath string) error {
	data, err := h.GenerateRunReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// ReportFromFilePath loads a JSON run report.
func ReportFromFilePath(filePath string) (metrics.RunReport, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return metrics.RunReport{}, err
	}
	var report metrics.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return metrics.RunReport{}, err
	}
	return report, nil
}
