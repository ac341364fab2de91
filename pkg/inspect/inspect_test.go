package inspect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/TFMV/datahobbit/pkg/generate"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.ColumnSpec{Name: "id", Type: schema.Integer},
		schema.ColumnSpec{Name: "score", Type: schema.Float},
		schema.ColumnSpec{Name: "active", Type: schema.Boolean},
		schema.ColumnSpec{Name: "email", Type: schema.Email},
	)
	require.NoError(t, err)
	return s
}

func TestFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"out_0.parquet", core.FormatParquet},
		{"OUT.PARQUET", core.FormatParquet},
		{"out_1.arrow", core.FormatArrow},
		{"data.csv", core.FormatCSV},
		{"data.tsv", core.FormatCSV},
		{"data.ndjson", core.FormatJSON},
		{"data.json", core.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Format(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Format("data.xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParquetSummary(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "out")
	files, err := generate.ColumnarSchema(context.Background(), testSchema(t), prefix, 300, 1<<30,
		generate.WithBatchSize(100), generate.WithCompression("snappy"), generate.WithSeed(7))
	require.NoError(t, err)
	require.Len(t, files, 1)

	sum, err := File(context.Background(), files[0].Path, WithSampleRows(3), WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)

	assert.Equal(t, core.FormatParquet, sum.Format)
	assert.EqualValues(t, 300, sum.Rows)
	assert.Equal(t, 3, sum.RowGroups)
	assert.Equal(t, "snappy", sum.Compression)
	assert.Equal(t, files[0].Bytes, sum.Bytes)
	require.Len(t, sum.Columns, 4)
	assert.Equal(t, Column{Name: "id", Type: "int64", Tag: "integer"}, sum.Columns[0])
	assert.Equal(t, Column{Name: "active", Type: "bool", Tag: "boolean"}, sum.Columns[2])
	require.Len(t, sum.Sample, 3)
	for _, row := range sum.Sample {
		require.Len(t, row, 4)
		assert.NotNil(t, row[0])
	}
}

func TestArrowSummary(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "out")
	files, err := generate.ColumnarSchema(context.Background(), testSchema(t), prefix, 250, 1<<30,
		generate.WithFormat(core.FormatArrow), generate.WithBatchSize(100))
	require.NoError(t, err)
	require.Len(t, files, 1)

	sum, err := File(context.Background(), files[0].Path)
	require.NoError(t, err)

	assert.Equal(t, core.FormatArrow, sum.Format)
	assert.EqualValues(t, 250, sum.Rows)
	assert.Equal(t, 3, sum.RowGroups)
	assert.Equal(t, "email", sum.Columns[3].Tag)
	assert.Len(t, sum.Sample, DefaultSampleRows)
}

func TestDelimitedSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	s := testSchema(t)
	_, err := generate.DelimitedSchema(context.Background(), s, path, 42, '\t')
	require.NoError(t, err)

	t.Run("text columns", func(t *testing.T) {
		sum, err := File(context.Background(), path)
		require.NoError(t, err)
		assert.EqualValues(t, 42, sum.Rows)
		assert.Equal(t, []string{"id", "score", "active", "email"}, columnNames(sum))
		for _, c := range sum.Columns {
			assert.Equal(t, "utf8", c.Type)
		}
	})

	t.Run("typed by schema", func(t *testing.T) {
		sum, err := File(context.Background(), path, WithSchema(s), WithSampleRows(1))
		require.NoError(t, err)
		assert.EqualValues(t, 42, sum.Rows)
		assert.Equal(t, "float64", sum.Columns[1].Type)
		require.Len(t, sum.Sample, 1)
		assert.IsType(t, true, sum.Sample[0][2])
	})
}

func TestDelimitedHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,email\n"), 0644))

	sum, err := File(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, sum.Rows)
	assert.Equal(t, []string{"id", "email"}, columnNames(sum))
	assert.Empty(t, sum.Sample)
}

func TestJSONSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.ndjson")
	_, err := generate.DelimitedSchema(context.Background(), testSchema(t), path, 12, ',',
		generate.WithFormat(core.FormatJSON))
	require.NoError(t, err)

	sum, err := File(context.Background(), path, WithSampleRows(2))
	require.NoError(t, err)
	assert.EqualValues(t, 12, sum.Rows)
	assert.Equal(t, []string{"id", "score", "active", "email"}, columnNames(sum))
	assert.Equal(t, "int64", sum.Columns[0].Type)
	assert.Equal(t, "bool", sum.Columns[2].Type)
	assert.Equal(t, "utf8", sum.Columns[3].Type)
	assert.Len(t, sum.Sample, 2)
}

func TestJSONSummaryRejectsNonObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"a\":1}\n[1,2]\n"), 0644))

	_, err := File(context.Background(), path)
	assert.ErrorContains(t, err, "line 2")
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("x\n1\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("x\n1\n2\n"), 0644))

	sums, err := Files(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.EqualValues(t, 1, sums[0].Rows)
	assert.EqualValues(t, 2, sums[1].Rows)

	sums, err = Files(context.Background(), []string{a, filepath.Join(dir, "missing.csv")})
	assert.Error(t, err)
	assert.Len(t, sums, 1)
}

func columnNames(sum *Summary) []string {
	names := make([]string, len(sum.Columns))
	for i, c := range sum.Columns {
		names[i] = c.Name
	}
	return names
}
