package readers

import (
	"context"
	"fmt"
	"io"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetReader reads a Parquet file in records of at most BatchSize rows.
type ParquetReader struct {
	schema     *arrow.Schema
	fileReader *file.Reader
	records    pqarrow.RecordReader
}

// NewParquetReader creates a new Parquet reader.
func NewParquetReader(config core.ReaderConfig) (core.DatasetReader, error) {
	fileReader, err := file.OpenParquetFile(config.Path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	arrowReader, err := pqarrow.NewFileReader(fileReader, pqarrow.ArrowReadProperties{BatchSize: int64(config.BatchSize)}, config.Allocator)
	if err != nil {
		fileReader.Close()
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		fileReader.Close()
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	records, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		fileReader.Close()
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}

	return &ParquetReader{
		schema:     schema,
		fileReader: fileReader,
		records:    records,
	}, nil
}

// Read returns the next batch of records.
func (r *ParquetReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.records.Next() {
		return r.records.Record(), nil
	}
	if err := r.records.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read Parquet records: %w", err)
	}
	return nil, io.EOF
}

// Schema returns the schema of the records.
func (r *ParquetReader) Schema() *arrow.Schema {
	return r.schema
}

// Close releases resources.
func (r *ParquetReader) Close() error {
	r.records.Release()
	return r.fileReader.Close()
}
