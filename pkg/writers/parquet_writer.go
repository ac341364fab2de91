package writers

import (
	"context"
	"errors"
	"fmt"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetWriter implements a container writer for Parquet files.
type ParquetWriter struct {
	writer    *pqarrow.FileWriter
	sink      *fileSink
	rowGroups int
}

// NewParquetWriter creates the file at config.Path and a Parquet writer over it.
func NewParquetWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	return newParquetWriter(config)
}

func newParquetWriter(config core.WriterConfig) (*ParquetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet writer")
	}
	if config.Schema == nil {
		return nil, errors.New("schema is required for Parquet writer")
	}
	codec, err := ParquetCodec(config.Compression)
	if err != nil {
		return nil, err
	}
	mem := config.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	sink, err := createFile(config.Path)
	if err != nil {
		return nil, err
	}

	writeProps := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithAllocator(mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
		pqarrow.WithAllocator(mem),
	)

	writer, err := pqarrow.NewFileWriter(config.Schema, sink, writeProps, arrowProps)
	if err != nil {
		sink.close()
		return nil, fmt.Errorf("failed to create Parquet writer: %w", err)
	}

	return &ParquetWriter{writer: writer, sink: sink}, nil
}

// Write appends record as a single row group.
func (w *ParquetWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.rowGroups++
	return nil
}

// Flush pushes the completed row groups to the file.
func (w *ParquetWriter) Flush() error {
	return w.sink.flush()
}

// RowGroups returns the number of row groups written.
func (w *ParquetWriter) RowGroups() int {
	return w.rowGroups
}

// BytesWritten returns the bytes flushed to the file so far.
func (w *ParquetWriter) BytesWritten() int64 {
	return w.sink.written
}

// Close writes the footer and closes the file.
func (w *ParquetWriter) Close() error {
	var err error

	if w.writer != nil {
		if closeErr := w.writer.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close Parquet writer: %w", closeErr)
		}
		w.writer = nil
	}

	if closeErr := w.sink.close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}
