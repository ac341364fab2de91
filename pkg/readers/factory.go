// Package readers reads generated files back as Arrow records.
package readers

import (
	"fmt"

	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DefaultBatchSize is the number of rows per record read from text formats.
const DefaultBatchSize = 10000

// Factory creates a reader based on the given configuration.
type Factory struct {
	// registered readers by format
	readers map[string]Creator
}

// Creator is a function that creates a reader from a configuration.
type Creator func(config core.ReaderConfig) (core.DatasetReader, error)

// NewFactory creates a new reader factory.
func NewFactory() *Factory {
	return &Factory{
		readers: make(map[string]Creator),
	}
}

// Register registers a creator for a format.
func (f *Factory) Register(format string, creator Creator) {
	f.readers[format] = creator
}

// Create creates a reader based on the given configuration.
func (f *Factory) Create(config core.ReaderConfig) (core.DatasetReader, error) {
	creator, ok := f.readers[config.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported reader format: %s", config.Format)
	}
	if config.Allocator == nil {
		config.Allocator = memory.NewGoAllocator()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	return creator(config)
}

// DefaultFactory is the default reader factory with built-in reader formats.
var DefaultFactory = NewFactory()

// init registers built-in reader formats.
func init() {
	DefaultFactory.Register(core.FormatParquet, NewParquetReader)
	DefaultFactory.Register(core.FormatArrow, NewArrowReader)
	DefaultFactory.Register(core.FormatCSV, NewCSVReader)
	DefaultFactory.Register(core.FormatJSON, NewJSONReader)
}
