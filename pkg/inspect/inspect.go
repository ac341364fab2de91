// Package inspect summarizes generated output files: their shape, their
// columns and a few sample rows.
package inspect

import (
	"bufio"
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// DefaultSampleRows is the number of rows kept in a Summary by default.
const DefaultSampleRows = 5

// ErrUnknownFormat is returned for a path whose extension maps to no format.
var ErrUnknownFormat = errors.New("unknown file format")

// Column describes one column of an inspected file.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// Tag is the schema type tag recorded in field metadata, when present.
	Tag string `json:"tag,omitempty"`
}

// Summary describes an inspected file.
type Summary struct {
	Path        string   `json:"path"`
	Format      string   `json:"format"`
	Rows        int64    `json:"rows"`
	RowGroups   int      `json:"row_groups"`
	Bytes       int64    `json:"bytes"`
	Compression string   `json:"compression,omitempty"`
	Columns     []Column `json:"columns"`
	Sample      [][]any  `json:"sample"`
}

type options struct {
	sampleRows int
	delimiter  rune
	schema     *schema.Schema
	mem        memory.Allocator
}

// Option configures File and Files.
type Option func(*options)

// WithSampleRows sets how many rows are kept in Summary.Sample.
func WithSampleRows(n int) Option {
	return func(o *options) { o.sampleRows = n }
}

// WithDelimiter overrides the delimiter used for delimited files.
func WithDelimiter(d rune) Option {
	return func(o *options) { o.delimiter = d }
}

// WithSchema types delimited columns with s instead of reading them as text.
// Every value must then parse as its column's type.
func WithSchema(s *schema.Schema) Option {
	return func(o *options) { o.schema = s }
}

// WithAllocator sets the allocator used while reading.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) { o.mem = mem }
}

// Format maps a path's extension to an output format.
func Format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return core.FormatParquet, nil
	case ".arrow", ".ipc", ".feather":
		return core.FormatArrow, nil
	case ".csv", ".tsv", ".txt":
		return core.FormatCSV, nil
	case ".json", ".jsonl", ".ndjson":
		return core.FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// File summarizes the file at path.
func File(ctx context.Context, path string, opts ...Option) (*Summary, error) {
	o := options{sampleRows: DefaultSampleRows}
	for _, opt := range opts {
		opt(&o)
	}
	if o.mem == nil {
		o.mem = memory.NewGoAllocator()
	}
	if o.delimiter == 0 {
		o.delimiter = ','
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			o.delimiter = '\t'
		}
	}

	format, err := Format(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Path: path, Format: format, Bytes: info.Size(), Sample: [][]any{}}
	switch format {
	case core.FormatParquet:
		err = parquetSummary(ctx, path, &o, sum)
	case core.FormatArrow:
		err = arrowSummary(ctx, path, &o, sum)
	case core.FormatCSV:
		err = delimitedSummary(ctx, path, &o, sum)
	case core.FormatJSON:
		err = jsonSummary(ctx, path, &o, sum)
	}
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	return sum, nil
}

// Files summarizes every path in order, stopping at the first failure.
func Files(ctx context.Context, paths []string, opts ...Option) ([]*Summary, error) {
	out := make([]*Summary, 0, len(paths))
	for _, p := range paths {
		sum, err := File(ctx, p, opts...)
		if err != nil {
			return out, err
		}
		out = append(out, sum)
	}
	return out, nil
}

func parquetSummary(ctx context.Context, path string, o *options, sum *Summary) error {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return err
	}
	defer pf.Close()

	sum.Rows = pf.NumRows()
	sum.RowGroups = pf.NumRowGroups()
	if sum.RowGroups > 0 {
		rg := pf.MetaData().RowGroup(0)
		if rg.NumColumns() > 0 {
			cc, err := rg.ColumnChunk(0)
			if err != nil {
				return err
			}
			sum.Compression = strings.ToLower(cc.Compression().String())
		}
	}

	rdr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, o.mem)
	if err != nil {
		return err
	}
	sc, err := rdr.Schema()
	if err != nil {
		return err
	}
	sum.Columns = columns(sc)

	if sum.RowGroups == 0 || o.sampleRows <= 0 {
		return nil
	}
	cols := make([]int, sc.NumFields())
	for i := range cols {
		cols[i] = i
	}
	tbl, err := rdr.RowGroup(0).ReadTable(ctx, cols)
	if err != nil {
		return err
	}
	defer tbl.Release()

	tr := array.NewTableReader(tbl, int64(o.sampleRows))
	defer tr.Release()
	for tr.Next() && len(sum.Sample) < o.sampleRows {
		sum.Sample = appendSample(sum.Sample, tr.Record(), o.sampleRows)
	}
	return nil
}

func arrowSummary(ctx context.Context, path string, o *options, sum *Summary) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rdr, err := ipc.NewFileReader(f, ipc.WithAllocator(o.mem))
	if err != nil {
		return err
	}
	defer rdr.Close()

	sum.Columns = columns(rdr.Schema())
	sum.RowGroups = rdr.NumRecords()
	for i := 0; i < rdr.NumRecords(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := rdr.Record(i)
		if err != nil {
			return err
		}
		sum.Rows += rec.NumRows()
		sum.Sample = appendSample(sum.Sample, rec, o.sampleRows)
	}
	return nil
}

func delimitedSummary(ctx context.Context, path string, o *options, sum *Summary) error {
	sc, err := delimitedSchema(path, o)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rdr := csv.NewReader(f, sc,
		csv.WithComma(o.delimiter),
		csv.WithHeader(true),
		csv.WithChunk(4096),
		csv.WithAllocator(o.mem),
	)
	defer rdr.Release()

	sum.Columns = columns(sc)
	for rdr.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec := rdr.Record()
		sum.Rows += rec.NumRows()
		sum.Sample = appendSample(sum.Sample, rec, o.sampleRows)
	}
	return rdr.Err()
}

// delimitedSchema types columns from the configured schema, or reads the
// header and treats every column as text.
func delimitedSchema(path string, o *options) (*arrow.Schema, error) {
	if o.schema != nil {
		return o.schema.ArrowSchema()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := stdcsv.NewReader(f)
	r.Comma = o.delimiter
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	fields := make([]arrow.Field, len(header))
	for i, name := range header {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
	}
	return arrow.NewSchema(fields, nil), nil
}

func jsonSummary(ctx context.Context, path string, o *options, sum *Summary) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		keys, values, err := decodeObject(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", sum.Rows+1, err)
		}
		if sum.Columns == nil {
			sum.Columns = make([]Column, len(keys))
			for i, k := range keys {
				sum.Columns[i] = Column{Name: k, Type: jsonType(values[i])}
			}
		}
		if len(sum.Sample) < o.sampleRows {
			sum.Sample = append(sum.Sample, values)
		}
		sum.Rows++
	}
	return sc.Err()
}

// decodeObject decodes one JSON object keeping its key order.
func decodeObject(line []byte) ([]string, []any, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected a JSON object")
	}

	var (
		keys   []string
		values []any
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.New("expected an object key")
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return keys, values, nil
}

func jsonType(v any) string {
	switch n := v.(type) {
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return arrow.PrimitiveTypes.Int64.String()
		}
		return arrow.PrimitiveTypes.Float64.String()
	case bool:
		return arrow.FixedWidthTypes.Boolean.String()
	case string:
		return arrow.BinaryTypes.String.String()
	case nil:
		return arrow.Null.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}

func columns(sc *arrow.Schema) []Column {
	out := make([]Column, sc.NumFields())
	for i, f := range sc.Fields() {
		out[i] = Column{Name: f.Name, Type: f.Type.String()}
		if idx := f.Metadata.FindKey(schema.TypeMetadataKey); idx >= 0 {
			out[i].Tag = f.Metadata.Values()[idx]
		}
	}
	return out
}

func appendSample(sample [][]any, rec arrow.Record, limit int) [][]any {
	n := int(rec.NumRows())
	for i := 0; i < n && len(sample) < limit; i++ {
		row := make([]any, rec.NumCols())
		for j, col := range rec.Columns() {
			if col.IsNull(i) {
				continue
			}
			row[j] = col.GetOneForMarshal(i)
		}
		sample = append(sample, row)
	}
	return sample
}
