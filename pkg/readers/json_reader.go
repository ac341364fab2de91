package readers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// JSONReader implements a reader for JSON lines files.
type JSONReader struct {
	file   *os.File
	reader *array.JSONReader
}

// NewJSONReader creates a new JSON lines reader. JSON carries no schema of
// its own, so config.Schema is required.
func NewJSONReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Schema == nil {
		return nil, errors.New("schema is required for JSON reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}

	reader := array.NewJSONReader(bufio.NewReader(file), config.Schema,
		array.WithChunk(config.BatchSize),
		array.WithAllocator(config.Allocator))

	return &JSONReader{file: file, reader: reader}, nil
}

// Read returns the next batch of records.
func (r *JSONReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.reader.Next() {
		return r.reader.Record(), nil
	}
	if err := r.reader.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	return nil, io.EOF
}

// Schema returns the schema of the records.
func (r *JSONReader) Schema() *arrow.Schema {
	return r.reader.Schema()
}

// Close releases resources.
func (r *JSONReader) Close() error {
	r.reader.Release()
	return r.file.Close()
}
