package writers

import (
	"context"
	"errors"
	"fmt"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CSVWriter implements a line sink for delimited text files.
type CSVWriter struct {
	writer *csv.Writer
	sink   *fileSink
	schema *arrow.Schema
	mem    memory.Allocator
}

// NewCSVWriter creates the file at config.Path and a CSV writer over it.
func NewCSVWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	return newCSVWriter(config)
}

func newCSVWriter(config core.WriterConfig) (*CSVWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for CSV writer")
	}
	if config.Schema == nil {
		return nil, errors.New("schema is required for CSV writer")
	}
	comma := config.Delimiter
	if comma == 0 {
		comma = ','
	}
	mem := config.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	sink, err := createFile(config.Path)
	if err != nil {
		return nil, err
	}

	return &CSVWriter{
		writer: csv.NewWriter(sink, config.Schema, csv.WithComma(comma), csv.WithHeader(true)),
		sink:   sink,
		schema: config.Schema,
		mem:    mem,
	}, nil
}

// WriteHeader writes the column names. The header is emitted by the first
// record written, so an empty record is enough.
func (w *CSVWriter) WriteHeader() error {
	b := array.NewRecordBuilder(w.mem, w.schema)
	defer b.Release()
	rec := b.NewRecord()
	defer rec.Release()

	if err := w.writer.Write(rec); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// Write writes one line per row of record.
func (w *CSVWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Flush pushes buffered lines to the file.
func (w *CSVWriter) Flush() error {
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv writer: %w", err)
	}
	return w.sink.flush()
}

// Close flushes, syncs and closes the file.
func (w *CSVWriter) Close() error {
	err := w.writer.Flush()
	if err != nil {
		err = fmt.Errorf("failed to flush csv writer: %w", err)
	}
	if closeErr := w.sink.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
