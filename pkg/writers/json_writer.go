package writers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// JSONWriter implements a line sink writing newline-delimited JSON: one object
// per row, keys in column order.
type JSONWriter struct {
	sink *fileSink
	keys [][]byte
	line []byte
}

// NewJSONWriter creates the file at config.Path and a JSON lines writer over it.
func NewJSONWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	return newJSONWriter(config)
}

func newJSONWriter(config core.WriterConfig) (*JSONWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for JSON writer")
	}
	if config.Schema == nil {
		return nil, errors.New("schema is required for JSON writer")
	}

	keys := make([][]byte, config.Schema.NumFields())
	for i, field := range config.Schema.Fields() {
		key, err := json.Marshal(field.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode column name %q: %w", field.Name, err)
		}
		keys[i] = key
	}

	sink, err := createFile(config.Path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{sink: sink, keys: keys}, nil
}

// WriteHeader is a no-op: JSON lines carry their keys on every row.
func (w *JSONWriter) WriteHeader() error {
	return nil
}

// Write writes one JSON object per row of record.
func (w *JSONWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	numRows := int(record.NumRows())
	numCols := int(record.NumCols())
	if numCols != len(w.keys) {
		return fmt.Errorf("record has %d columns, writer has %d", numCols, len(w.keys))
	}

	for i := 0; i < numRows; i++ {
		w.line = append(w.line[:0], '{')
		for j := 0; j < numCols; j++ {
			if j > 0 {
				w.line = append(w.line, ',')
			}
			w.line = append(w.line, w.keys[j]...)
			w.line = append(w.line, ':')

			var value interface{}
			switch col := record.Column(j).(type) {
			case *array.Int64:
				value = col.Value(i)
			case *array.Float64:
				value = col.Value(i)
			case *array.Boolean:
				value = col.Value(i)
			case *array.String:
				value = col.Value(i)
			default:
				return fmt.Errorf("unsupported column type %s", col.DataType())
			}

			encoded, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("failed to encode value: %w", err)
			}
			w.line = append(w.line, encoded...)
		}
		w.line = append(w.line, '}', '\n')

		if _, err := w.sink.Write(w.line); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

// Flush pushes buffered lines to the file.
func (w *JSONWriter) Flush() error {
	return w.sink.flush()
}

// Close flushes, syncs and closes the file.
func (w *JSONWriter) Close() error {
	return w.sink.close()
}
