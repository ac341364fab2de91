// Package writers provides the file writers for every output format.
package writers

import (
	"fmt"
	"sort"

	"github.com/TFMV/datahobbit/pkg/core"
)

// Factory creates a writer based on the given configuration.
type Factory struct {
	// registered writers by format
	writers map[string]Creator
}

// Creator is a function that creates a writer from a configuration.
type Creator func(config core.WriterConfig) (core.DatasetWriter, error)

// NewFactory creates a new writer factory.
func NewFactory() *Factory {
	return &Factory{
		writers: make(map[string]Creator),
	}
}

// Register registers a creator for a format.
func (f *Factory) Register(format string, creator Creator) {
	f.writers[format] = creator
}

// Create creates a writer based on the given configuration.
func (f *Factory) Create(config core.WriterConfig) (core.DatasetWriter, error) {
	creator, ok := f.writers[config.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s", config.Format)
	}
	return creator(config)
}

// Supports reports whether a creator is registered for format.
func (f *Factory) Supports(format string) bool {
	_, ok := f.writers[format]
	return ok
}

// Formats lists the registered formats in sorted order.
func (f *Factory) Formats() []string {
	formats := make([]string, 0, len(f.writers))
	for format := range f.writers {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// CreateContainer creates a writer and asserts it is a columnar container.
func (f *Factory) CreateContainer(config core.WriterConfig) (core.ContainerWriter, error) {
	w, err := f.Create(config)
	if err != nil {
		return nil, err
	}
	cw, ok := w.(core.ContainerWriter)
	if !ok {
		w.Close()
		return nil, fmt.Errorf("%s is not a columnar format", config.Format)
	}
	return cw, nil
}

// CreateLineSink creates a writer and asserts it is line oriented.
func (f *Factory) CreateLineSink(config core.WriterConfig) (core.LineSink, error) {
	w, err := f.Create(config)
	if err != nil {
		return nil, err
	}
	ls, ok := w.(core.LineSink)
	if !ok {
		w.Close()
		return nil, fmt.Errorf("%s is not a line-oriented format", config.Format)
	}
	return ls, nil
}

// IsColumnar reports whether format is written by the bounded multi-file writer.
func IsColumnar(format string) bool {
	return format == core.FormatParquet || format == core.FormatArrow
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	return format
}

// DefaultFactory is the default writer factory with built-in formats.
var DefaultFactory = NewFactory()

// init registers built-in formats.
func init() {
	DefaultFactory.Register(core.FormatParquet, NewParquetWriter)
	DefaultFactory.Register(core.FormatArrow, NewArrowWriter)
	DefaultFactory.Register(core.FormatCSV, NewCSVWriter)
	DefaultFactory.Register(core.FormatJSON, NewJSONWriter)
}
