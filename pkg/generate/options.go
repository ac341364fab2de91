package generate

import (
	"github.com/TFMV/datahobbit/pkg/batch"
	"github.com/TFMV/datahobbit/pkg/progress"
	"github.com/TFMV/datahobbit/pkg/writers"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the number of rows per row group in columnar output.
	DefaultBatchSize = 5000

	// MaxRowGroups caps the row groups in one columnar file.
	MaxRowGroups = 32767

	// DefaultMaxFileSize is the default byte limit of one columnar file.
	DefaultMaxFileSize int64 = 100 * 1024 * 1024
)

// SizeMode selects how the size of a columnar file is measured after a flush.
type SizeMode int

const (
	// SizeStat stats the file on disk.
	SizeStat SizeMode = iota

	// SizeCounted counts the bytes flushed through the writer.
	SizeCounted
)

type options struct {
	logger      *zap.Logger
	format      string
	batchSize   int
	chunkSize   int
	workers     int
	seed        uint64
	compression string
	ordered     bool
	sizeMode    SizeMode
	progress    progress.Reporter
	factory     *writers.Factory
	allocator   memory.Allocator
}

// Option configures a generation run.
type Option func(*options)

func newOptions(format string, opts []Option) *options {
	o := &options{
		logger:    zap.NewNop(),
		format:    format,
		batchSize: DefaultBatchSize,
		chunkSize: batch.DefaultChunkSize,
		ordered:   true,
		sizeMode:  SizeStat,
		progress:  progress.Nop(),
		factory:   writers.DefaultFactory,
		allocator: memory.NewGoAllocator(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithFormat overrides the output format.
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithBatchSize sets the rows per row group for columnar output.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithChunkSize sets the rows per parallel chunk for line output.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithWorkers sets the number of generation workers for line output.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSeed makes generation reproducible. Zero means unseeded.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithCompression sets the codec for columnar output.
func WithCompression(name string) Option {
	return func(o *options) { o.compression = name }
}

// WithOrdered controls whether line output keeps chunk order.
func WithOrdered(ordered bool) Option {
	return func(o *options) { o.ordered = ordered }
}

// WithSizeMode selects how columnar file sizes are measured.
func WithSizeMode(m SizeMode) Option {
	return func(o *options) { o.sizeMode = m }
}

// WithProgress sets the progress reporter.
func WithProgress(r progress.Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.progress = r
		}
	}
}

// WithFactory sets the writer factory.
func WithFactory(f *writers.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithAllocator sets the allocator used for record buffers.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem != nil {
			o.allocator = mem
		}
	}
}
