// Package encoder transposes generated rows into Arrow record batches.
package encoder

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/TFMV/datahobbit/pkg/batch"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrEncodingInconsistency is matched by EncodingInconsistencyError.
var ErrEncodingInconsistency = errors.New("encoding inconsistency")

// EncodingInconsistencyError reports a generated value that does not parse as
// its column's physical type, or a row of the wrong width.
type EncodingInconsistencyError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *EncodingInconsistencyError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("encoding inconsistency at row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("encoding inconsistency in column %q at row %d (value %q): %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *EncodingInconsistencyError) Unwrap() error { return e.Err }

func (e *EncodingInconsistencyError) Is(target error) bool {
	return target == ErrEncodingInconsistency
}

func (e *EncodingInconsistencyError) Code() string { return "ENCODING_INCONSISTENCY" }

// Encoder builds one Arrow record per batch of rows.
type Encoder struct {
	schema *schema.Schema
	arrow  *arrow.Schema
	mem    memory.Allocator
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithAllocator sets the allocator used for record buffers.
func WithAllocator(mem memory.Allocator) Option {
	return func(e *Encoder) {
		if mem != nil {
			e.mem = mem
		}
	}
}

// New returns an encoder for s.
func New(s *schema.Schema, opts ...Option) (*Encoder, error) {
	as, err := s.ArrowSchema()
	if err != nil {
		return nil, err
	}
	e := &Encoder{schema: s, arrow: as, mem: memory.NewGoAllocator()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Schema returns the Arrow schema of encoded records.
func (e *Encoder) Schema() *arrow.Schema {
	return e.arrow
}

// Allocator returns the allocator records are built with.
func (e *Encoder) Allocator() memory.Allocator {
	return e.mem
}

// Encode transposes rows into a record with one non-null value per row in every
// column. The caller owns the returned record and must Release it.
func (e *Encoder) Encode(rows []batch.Row) (arrow.Record, error) {
	b := array.NewRecordBuilder(e.mem, e.arrow)
	defer b.Release()

	width := len(e.schema.Columns)
	for i, row := range rows {
		if len(row) != width {
			return nil, &EncodingInconsistencyError{
				Row: i,
				Err: fmt.Errorf("row has %d values, schema has %d columns", len(row), width),
			}
		}
	}

	for c, col := range e.schema.Columns {
		if err := appendColumn(b.Field(c), col, rows, c); err != nil {
			return nil, err
		}
	}
	return b.NewRecord(), nil
}

func appendColumn(fb array.Builder, col schema.ColumnSpec, rows []batch.Row, c int) error {
	fb.Reserve(len(rows))

	switch bldr := fb.(type) {
	case *array.Int64Builder:
		for i, row := range rows {
			v, err := strconv.ParseInt(row[c], 10, 64)
			if err != nil {
				return &EncodingInconsistencyError{Column: col.Name, Row: i, Value: row[c], Err: err}
			}
			bldr.UnsafeAppend(v)
		}
	case *array.Float64Builder:
		for i, row := range rows {
			v, err := strconv.ParseFloat(row[c], 64)
			if err != nil {
				return &EncodingInconsistencyError{Column: col.Name, Row: i, Value: row[c], Err: err}
			}
			bldr.UnsafeAppend(v)
		}
	case *array.BooleanBuilder:
		for _, row := range rows {
			// Only the literal "true" encodes as true.
			bldr.UnsafeAppend(row[c] == "true")
		}
	case *array.StringBuilder:
		for _, row := range rows {
			bldr.Append(row[c])
		}
	default:
		return &EncodingInconsistencyError{
			Column: col.Name,
			Err:    fmt.Errorf("no builder for %s", fb.Type()),
		}
	}
	return nil
}
