package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "schema.json", `{
  "columns": [
    {"name": "id", "type": "integer"},
    {"name": "Email", "type": "email"},
    {"name": "score", "type": "float"}
  ]
}`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"id", "Email", "score"}, s.Names())
	assert.Equal(t, Email, s.Columns[1].Type)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "schema.yaml", `
columns:
  - name: active
    type: boolean
  - name: who
    type: first_name
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []ColumnSpec{{Name: "active", Type: Boolean}, {Name: "who", Type: FirstName}}, s.Columns)
}

func TestLoadOtherPathsAreJSON(t *testing.T) {
	for _, name := range []string{"schema", "schema.JSON", "schema.txt"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, `{"columns":[{"name":"id","type":"integer"}]}`)

			s, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestLoadUpperCaseYAML(t *testing.T) {
	path := writeFile(t, "schema.YML", "columns:\n  - name: id\n    type: integer\n")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []ColumnSpec{{Name: "id", Type: Integer}}, s.Columns)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		sentinel error
	}{
		{"malformed", "bad.json", `{"columns": [`, ErrSchemaLoad},
		{"no columns", "empty.json", `{"columns": []}`, ErrSchemaLoad},
		{"empty name", "noname.json", `{"columns": [{"name": "", "type": "integer"}]}`, ErrSchemaLoad},
		{"duplicate", "dup.json", `{"columns": [{"name": "a", "type": "integer"}, {"name": "a", "type": "float"}]}`, ErrSchemaLoad},
		{"unknown type", "unknown.json", `{"columns": [{"name": "a", "type": "uuid"}]}`, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaLoad)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Path, "missing.json")
}

func TestUnsupportedTypeNamesTag(t *testing.T) {
	_, err := Parse([]byte(`{"columns": [{"name": "a", "type": "geo_point"}]}`), "json")
	require.Error(t, err)

	var ut *UnsupportedTypeError
	require.True(t, errors.As(err, &ut))
	assert.Equal(t, "geo_point", ut.Tag)
	assert.Contains(t, err.Error(), "geo_point")
}

func TestArrowSchema(t *testing.T) {
	s, err := New(
		ColumnSpec{Name: "id", Type: Integer},
		ColumnSpec{Name: "price", Type: Float},
		ColumnSpec{Name: "ok", Type: Boolean},
		ColumnSpec{Name: "note", Type: Sentence},
	)
	require.NoError(t, err)

	as, err := s.ArrowSchema()
	require.NoError(t, err)
	require.Equal(t, 4, as.NumFields())

	expected := []arrow.DataType{
		arrow.PrimitiveTypes.Int64,
		arrow.PrimitiveTypes.Float64,
		arrow.FixedWidthTypes.Boolean,
		arrow.BinaryTypes.String,
	}
	for i, f := range as.Fields() {
		assert.True(t, arrow.TypeEqual(expected[i], f.Type), "field %s", f.Name)
		assert.False(t, f.Nullable)
		tag, ok := f.Metadata.GetValue(TypeMetadataKey)
		assert.True(t, ok)
		assert.Equal(t, string(s.Columns[i].Type), tag)
	}
}

func TestEveryTagHasEncoding(t *testing.T) {
	for _, tag := range TypeTags {
		assert.True(t, tag.Known(), "tag %s", tag)
	}
	assert.False(t, TypeTag("nope").Known())
}
