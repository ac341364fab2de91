package writers

import (
	"context"
	"errors"
	"fmt"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowWriter implements a container writer for Arrow IPC files. Each record
// batch counts as one row group.
type ArrowWriter struct {
	writer    *ipc.FileWriter
	sink      *fileSink
	rowGroups int
}

// NewArrowWriter creates the file at config.Path and an Arrow IPC writer over it.
func NewArrowWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	return newArrowWriter(config)
}

func newArrowWriter(config core.WriterConfig) (*ArrowWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Arrow writer")
	}
	if config.Schema == nil {
		return nil, errors.New("schema is required for Arrow writer")
	}
	codecOpts, err := ArrowCodec(config.Compression)
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

	opts := append([]ipc.Option{ipc.WithSchema(config.Schema), ipc.WithAllocator(mem)}, codecOpts...)
	writer, err := ipc.NewFileWriter(sink, opts...)
	if err != nil {
		sink.close()
		return nil, fmt.Errorf("failed to create Arrow writer: %w", err)
	}

	return &ArrowWriter{writer: writer, sink: sink}, nil
}

// Write appends record as one record batch.
func (w *ArrowWriter) Write(ctx context.Context, record arrow.Record) error {
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

// Flush pushes written batches to the file.
func (w *ArrowWriter) Flush() error {
	return w.sink.flush()
}

// RowGroups returns the number of record batches written.
func (w *ArrowWriter) RowGroups() int {
	return w.rowGroups
}

// BytesWritten returns the bytes flushed to the file so far.
func (w *ArrowWriter) BytesWritten() int64 {
	return w.sink.written
}

// Close writes the footer and closes the file.
func (w *ArrowWriter) Close() error {
	var err error

	if w.writer != nil {
		if closeErr := w.writer.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close Arrow writer: %w", closeErr)
		}
		w.writer = nil
	}

	if closeErr := w.sink.close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}
