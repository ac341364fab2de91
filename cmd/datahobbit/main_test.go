package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TFMV/datahobbit/logger"
	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/inspect"
	"github.com/TFMV/datahobbit/version"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{"columns":[{"name":"id","type":"integer"},{"name":"email","type":"email"}]}`

func executeCommand(rootCmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// run executes the CLI with logging and progress confined to the test.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(logger.ResetLogger)
	base := []string{"--log-file", filepath.Join(t.TempDir(), "test.log"), "--log-level", "error"}
	return executeCommand(newRootCommand(), append(base, args...)...)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCLI_Help(t *testing.T) {
	output, err := executeCommand(newRootCommand(), "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "Usage:")
	for _, sub := range []string{"generate", "inspect", "serve", "report", "types", "verify", "version"} {
		assert.Contains(t, output, sub)
	}
}

func TestCLI_Version(t *testing.T) {
	output, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "datahobbit v"+version.Version)
}

func TestCLI_Types(t *testing.T) {
	output, err := run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, output, "TYPE")
	assert.Contains(t, output, "phone_number")
	assert.Regexp(t, `integer\s+int64`, output)
	assert.Regexp(t, `boolean\s+bool`, output)
}

func TestCLI_GenerateCSV(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	out := filepath.Join(dir, "out.csv")

	output, err := run(t, "generate", schemaPath, out, "--records", "3", "--progress", "none")
	require.NoError(t, err)
	assert.Contains(t, output, "Generated 3 rows into 1 file(s)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,email", lines[0])
}

func TestCLI_GenerateTabDelimited(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	out := filepath.Join(dir, "out.tsv")

	_, err := run(t, "generate", schemaPath, out, "-n", "2", "-d", `\t`, "--progress", "none")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id\temail\n"))
}

func TestCLI_GenerateParquetWithReport(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	prefix := filepath.Join(dir, "part")
	reportPath := filepath.Join(dir, "run.json")

	_, err := run(t, "generate", schemaPath, prefix,
		"--records", "5000", "--format", "parquet", "--batch-size", "1000",
		"--max-file-size", "1024", "--compression", "snappy",
		"--report", reportPath, "--progress", "none")
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep metrics.RunReport
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.True(t, rep.Status.Passed)
	assert.EqualValues(t, 5000, rep.TotalRows)
	assert.Equal(t, "parquet", rep.Config.Format)
	require.NotEmpty(t, rep.Files)
	assert.Equal(t, prefix+"_0.parquet", rep.Files[0].Path)
}

func TestCLI_Report(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	jsonPath := filepath.Join(dir, "run.json")
	htmlPath := filepath.Join(dir, "run.html")

	_, err := run(t, "generate", schemaPath, filepath.Join(dir, "out.csv"), "-n", "3",
		"--report", jsonPath, "--progress", "none")
	require.NoError(t, err)

	output, err := run(t, "report", jsonPath, htmlPath)
	require.NoError(t, err)
	assert.Contains(t, output, "written to "+htmlPath)

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<html")

	_, err = run(t, "report", filepath.Join(dir, "missing.json"), htmlPath)
	assert.ErrorContains(t, err, "missing.json")
}

func TestCLI_GenerateFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	configPath := writeFile(t, dir, "datahobbit.yaml", `
generate:
  format: json
  progress: none
  seed: 42
`)
	out := filepath.Join(dir, "out.ndjson")

	_, err := run(t, "--config", configPath, "generate", schemaPath, out, "--records", "4")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, json.Valid([]byte(lines[0])))
}

func TestCLI_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	configPath := writeFile(t, dir, "datahobbit.yaml", "generate:\n  format: json\n  progress: none\n")
	out := filepath.Join(dir, "out.csv")

	_, err := run(t, "--config", configPath, "generate", schemaPath, out, "-n", "1", "--format", "csv")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,email\n"))
}

func TestCLI_GenerateErrors(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	badSchema := writeFile(t, dir, "bad.json", `{"columns":[{"name":"x","type":"uuid"}]}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing records", []string{"generate", schemaPath, filepath.Join(dir, "a.csv")}, "records"},
		{"unknown format", []string{"generate", schemaPath, filepath.Join(dir, "b.out"), "-n", "1", "--format", "xml"}, "unsupported format"},
		{"multi-byte delimiter", []string{"generate", schemaPath, filepath.Join(dir, "c.csv"), "-n", "1", "-d", "::"}, "delimiter"},
		{"unknown type", []string{"generate", badSchema, filepath.Join(dir, "d.csv"), "-n", "1", "--progress", "none"}, "uuid"},
		{"missing schema", []string{"generate", filepath.Join(dir, "nope.json"), filepath.Join(dir, "e.csv"), "-n", "1", "--progress", "none"}, "nope.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "d.csv"))
	assert.True(t, os.IsNotExist(err), "unknown type must not create output")
}

func TestCLI_Inspect(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	prefix := filepath.Join(dir, "part")

	_, err := run(t, "generate", schemaPath, prefix, "-n", "10", "--format", "arrow", "--progress", "none")
	require.NoError(t, err)

	output, err := run(t, "inspect", prefix+"_0.arrow", "--sample", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "Format: arrow")
	assert.Contains(t, output, "Rows: 10")
	assert.Contains(t, output, "email (utf8) [email]")
	assert.Contains(t, output, "Row 1:")

	output, err = run(t, "inspect", "--json", prefix+"_0.arrow")
	require.NoError(t, err)
	var sums []inspect.Summary
	require.NoError(t, json.Unmarshal([]byte(output), &sums))
	require.Len(t, sums, 1)
	assert.EqualValues(t, 10, sums[0].Rows)
}

func TestCLI_InspectParquetSample(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	prefix := filepath.Join(dir, "part")

	_, err := run(t, "generate", schemaPath, prefix, "-n", "10", "--format", "parquet", "--progress", "none")
	require.NoError(t, err)

	output, err := run(t, "inspect", "--sample", "4", "--json", prefix+"_0.parquet")
	require.NoError(t, err)
	var sums []inspect.Summary
	require.NoError(t, json.Unmarshal([]byte(output), &sums))
	require.Len(t, sums, 1)
	assert.EqualValues(t, 10, sums[0].Rows)
	require.Len(t, sums[0].Sample, 4)
	for _, row := range sums[0].Sample {
		assert.Len(t, row, 2)
	}
}

func TestCLI_InspectDelimitedWithSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	out := filepath.Join(dir, "out.txt")

	_, err := run(t, "generate", schemaPath, out, "-n", "6", "-d", ";", "--progress", "none")
	require.NoError(t, err)

	output, err := run(t, "inspect", out, "-d", ";", "--schema", schemaPath)
	require.NoError(t, err)
	assert.Contains(t, output, "Rows: 6")
	assert.Contains(t, output, "id (int64) [integer]")
}

func TestCLI_InspectUnknownExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.xlsx", "x")
	_, err := run(t, "inspect", path)
	assert.ErrorIs(t, err, inspect.ErrUnknownFormat)
}

func TestCLI_InvalidLogLevel(t *testing.T) {
	_, err := executeCommand(newRootCommand(), "--log-level", "loud", "types")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestCLI_GenerateVerify(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	reportPath := filepath.Join(dir, "run.html")

	output, err := run(t, "generate", schemaPath, filepath.Join(dir, "part"), "-n", "2500",
		"--format", "parquet", "--batch-size", "500", "--verify", "--report", reportPath, "--progress", "none")
	require.NoError(t, err)
	assert.Contains(t, output, "Validation passed: 2500 rows read back")

	html, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h2>Validation</h2>")
}

func TestCLI_Verify(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	out := filepath.Join(dir, "out.csv")
	_, err := run(t, "generate", schemaPath, out, "-n", "7", "--progress", "none")
	require.NoError(t, err)

	output, err := run(t, "verify", schemaPath, out, "--records", "7")
	require.NoError(t, err)
	assert.Contains(t, output, "PASS "+out)
	assert.Contains(t, output, "Rows read: 7")

	output, err = run(t, "verify", schemaPath, out, "--records", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 8 rows in total, found 7")
	assert.Contains(t, output, "FAIL expected 8 rows")
}

func TestCLI_VerifyReportsViolations(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", testSchema)
	bad := writeFile(t, dir, "bad.csv", "id,email\n5,a@b.c\n4000,nobody\n")

	output, err := run(t, "verify", "--json", schemaPath, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files failed")

	var rep metrics.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(output), &rep))
	require.Len(t, rep.Files, 1)
	assert.EqualValues(t, 2, rep.Files[0].Violations)
}
