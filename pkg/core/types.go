// Package core provides the shared types and interfaces of the datahobbit generator.
package core

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Output formats.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
	FormatArrow   = "arrow"
)

// DatasetWriter defines an interface for writing generated records to a destination.
type DatasetWriter interface {
	// Write writes a record to the destination.
	Write(ctx context.Context, record arrow.Record) error

	// Flush pushes buffered bytes to the underlying file.
	Flush() error

	// Close flushes any pending data, syncs and closes the file.
	Close() error
}

// ContainerWriter is a DatasetWriter for a columnar container. Every Write
// appends exactly one row group (Parquet) or record batch (Arrow IPC).
type ContainerWriter interface {
	DatasetWriter

	// RowGroups returns the number of row groups written so far.
	RowGroups() int

	// BytesWritten returns the number of bytes flushed to the file so far.
	BytesWritten() int64
}

// LineSink is a DatasetWriter that emits one text line per row.
type LineSink interface {
	DatasetWriter

	// WriteHeader writes the header line, if the format has one.
	// It must be called before the first Write.
	WriteHeader() error
}

// WriterConfig provides configuration for creating a writer.
type WriterConfig struct {
	// Format is the output format, one of the Format constants.
	Format string

	// Path is the path of the file to create.
	Path string

	// Schema is the Arrow schema of every record written.
	Schema *arrow.Schema

	// Compression names the codec for columnar formats. Empty means none.
	Compression string

	// Delimiter is the field separator for CSV output. Zero means ','.
	Delimiter rune

	// Allocator is used for writer-side buffers. Nil means a Go allocator.
	Allocator memory.Allocator
}

// DatasetReader defines an interface for reading generated files back as
// Arrow records.
type DatasetReader interface {
	// Read returns the next record, or io.EOF once the file is exhausted.
	// The record is owned by the reader and valid until the next Read.
	Read(ctx context.Context) (arrow.Record, error)

	// Schema returns the schema of the records read.
	Schema() *arrow.Schema

	// Close releases the reader and its file.
	Close() error
}

// ReaderConfig provides configuration for creating a reader.
type ReaderConfig struct {
	// Format is the file format, one of the Format constants.
	Format string

	// Path is the path of the file to read.
	Path string

	// Schema types the columns of text formats. It is required for JSON
	// lines; CSV infers column types from the first row without it.
	Schema *arrow.Schema

	// BatchSize is the number of rows per record for text formats.
	BatchSize int

	// Delimiter is the CSV field separator. Zero means ','.
	Delimiter rune

	Allocator memory.Allocator
}
