package readers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
)

// CSVReader implements a reader for delimited files, converting to Arrow.
type CSVReader struct {
	file   *os.File
	reader *csv.Reader
}

// NewCSVReader creates a new CSV reader. With a schema every value must
// parse as its column's type and the header names replace the field names.
// Without one, column types are inferred from the first data row.
func NewCSVReader(config core.ReaderConfig) (core.DatasetReader, error) {
	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	comma := config.Delimiter
	if comma == 0 {
		comma = ','
	}
	opts := []csv.Option{
		csv.WithComma(comma),
		csv.WithChunk(config.BatchSize),
		csv.WithHeader(true),
		csv.WithAllocator(config.Allocator),
	}

	var reader *csv.Reader
	if config.Schema != nil {
		reader = csv.NewReader(file, config.Schema, opts...)
	} else {
		reader = csv.NewInferringReader(file, opts...)
	}

	return &CSVReader{file: file, reader: reader}, nil
}

// Read returns the next batch of records.
func (r *CSVReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.reader.Next() {
		return r.reader.Record(), nil
	}
	if err := r.reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return nil, io.EOF
}

// Schema returns the schema of the records. An inferring reader has no
// schema until its first Read.
func (r *CSVReader) Schema() *arrow.Schema {
	return r.reader.Schema()
}

// Close releases resources.
func (r *CSVReader) Close() error {
	r.reader.Release()
	return r.file.Close()
}
