package readers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
)

// ArrowReader implements a reader for Arrow IPC files. Each record batch of
// the file is returned as written.
type ArrowReader struct {
	reader     *ipc.FileReader
	file       *os.File
	currentIdx int
}

// NewArrowReader creates a new Arrow IPC reader.
func NewArrowReader(config core.ReaderConfig) (core.DatasetReader, error) {
	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Arrow file: %w", err)
	}

	reader, err := ipc.NewFileReader(file, ipc.WithAllocator(config.Allocator))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}

	return &ArrowReader{reader: reader, file: file}, nil
}

// Read returns the next record batch.
func (r *ArrowReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.currentIdx >= r.reader.NumRecords() {
		return nil, io.EOF
	}
	record, err := r.reader.Record(r.currentIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to read record batch %d: %w", r.currentIdx, err)
	}
	r.currentIdx++
	return record, nil
}

// Schema returns the schema of the records.
func (r *ArrowReader) Schema() *arrow.Schema {
	return r.reader.Schema()
}

// Close releases resources.
func (r *ArrowReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
