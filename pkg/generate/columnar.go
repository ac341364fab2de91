// Package generate writes generated datasets to disk: columnar output split
// across size-bounded files, and line-oriented output to a single file.
package generate

import (
	"context"
	"fmt"
	"os"

	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/batch"
	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/TFMV/datahobbit/pkg/encoder"
	"github.com/TFMV/datahobbit/pkg/generator"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/TFMV/datahobbit/pkg/writers"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
)

// Columnar loads the schema at schemaPath and writes records rows to
// {prefix}_{index}.parquet files (or .arrow with WithFormat), starting a new
// file once the current one reaches maxFileSize bytes or MaxRowGroups row
// groups. It returns the stats of every file written.
func Columnar(ctx context.Context, schemaPath, prefix string, records, maxFileSize int64, opts ...Option) ([]metrics.FileStats, error) {
	s, err := schema.Load(schemaPath)
	if err != nil {
		return nil, err
	}
	return ColumnarSchema(ctx, s, prefix, records, maxFileSize, opts...)
}

// ColumnarSchema is Columnar for an already loaded schema.
func ColumnarSchema(ctx context.Context, s *schema.Schema, prefix string, records, maxFileSize int64, opts ...Option) ([]metrics.FileStats, error) {
	o := newOptions(core.FormatParquet, opts)

	if !writers.IsColumnar(o.format) {
		return nil, fmt.Errorf("%s is not a columnar format", o.format)
	}
	if err := writers.ValidateCompression(o.format, o.compression); err != nil {
		return nil, err
	}
	if records < 0 {
		return nil, fmt.Errorf("records must not be negative: %d", records)
	}
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive: %d", maxFileSize)
	}

	producer, err := batch.NewProducer(s)
	if err != nil {
		return nil, err
	}
	enc, err := encoder.New(s, encoder.WithAllocator(o.allocator))
	if err != nil {
		return nil, err
	}

	if records == 0 {
		o.logger.Info("No records requested, no files written", zap.String("prefix", prefix))
		return nil, nil
	}

	bw := &boundedWriter{
		opts:        o,
		producer:    producer,
		enc:         enc,
		prefix:      prefix,
		records:     records,
		maxFileSize: maxFileSize,
	}
	return bw.run(ctx)
}

// boundedWriter rolls columnar output across files.
type boundedWriter struct {
	opts        *options
	producer    *batch.Producer
	enc         *encoder.Encoder
	prefix      string
	records     int64
	maxFileSize int64

	files   []metrics.FileStats
	current metrics.FileStats
	writer  core.ContainerWriter
}

func (b *boundedWriter) run(ctx context.Context) ([]metrics.FileStats, error) {
	log := b.opts.logger
	faker := generator.NewFaker(b.opts.seed)

	b.opts.progress.Start(b.records, "generating")
	defer b.opts.progress.Finish()

	log.Info("Starting columnar generation",
		zap.String("format", b.opts.format),
		zap.String("prefix", b.prefix),
		zap.Int64("records", b.records),
		zap.Int64("max_file_size", b.maxFileSize),
		zap.Int("batch_size", b.opts.batchSize))

	var written int64
	for written < b.records {
		if err := ctx.Err(); err != nil {
			b.abort()
			return b.files, err
		}

		if b.writer == nil {
			if err := b.openFile(); err != nil {
				return b.files, err
			}
		}

		n := b.records - written
		if n > int64(b.opts.batchSize) {
			n = int64(b.opts.batchSize)
		}
		if err := b.writeBatch(ctx, faker, int(n)); err != nil {
			b.abort()
			return b.files, err
		}
		written += n
		b.opts.progress.Add(int(n))

		if b.current.Bytes >= b.maxFileSize || b.current.RowGroups >= MaxRowGroups || written >= b.records {
			if err := b.closeFile(); err != nil {
				return b.files, err
			}
		}
	}

	log.Info("Columnar generation complete",
		zap.Int("files", len(b.files)),
		zap.Int64("records", written))
	return b.files, nil
}

func (b *boundedWriter) openFile() error {
	index := len(b.files)
	path := fmt.Sprintf("%s_%d.%s", b.prefix, index, writers.Extension(b.opts.format))

	w, err := b.opts.factory.CreateContainer(core.WriterConfig{
		Format:      b.opts.format,
		Path:        path,
		Schema:      b.enc.Schema(),
		Compression: b.opts.compression,
		Allocator:   b.opts.allocator,
	})
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	b.writer = w
	b.current = metrics.FileStats{Index: index, Path: path}
	b.opts.logger.Info("Opened output file", zap.String("path", path), zap.Int("index", index))
	return nil
}

// writeBatch appends n rows as one row group, flushes and re-measures the file.
func (b *boundedWriter) writeBatch(ctx context.Context, faker *gofakeit.Faker, n int) error {
	rows := b.producer.Produce(faker, n)
	rec, err := b.enc.Encode(rows)
	if err != nil {
		return err
	}
	err = b.writer.Write(ctx, rec)
	rec.Release()
	if err != nil {
		return ioError("write", b.current.Path, err)
	}

	if err := b.writer.Flush(); err != nil {
		return &IOError{Op: "flush", Path: b.current.Path, Err: err}
	}

	size, err := b.measure()
	if err != nil {
		return err
	}
	b.current.Rows += int64(n)
	b.current.RowGroups = b.writer.RowGroups()
	b.current.Bytes = size

	b.opts.logger.Debug("Wrote row group",
		zap.String("path", b.current.Path),
		zap.Int("rows", n),
		zap.Int("row_groups", b.current.RowGroups),
		zap.Int64("bytes", size))
	return nil
}

func (b *boundedWriter) measure() (int64, error) {
	if b.opts.sizeMode == SizeCounted {
		return b.writer.BytesWritten(), nil
	}
	info, err := os.Stat(b.current.Path)
	if err != nil {
		return 0, &IOError{Op: "stat", Path: b.current.Path, Err: err}
	}
	return info.Size(), nil
}

func (b *boundedWriter) closeFile() error {
	w := b.writer
	b.writer = nil
	if err := w.Close(); err != nil {
		return &IOError{Op: "close", Path: b.current.Path, Err: err}
	}

	// The footer lands on close, so the final size is re-read.
	if b.opts.sizeMode == SizeCounted {
		b.current.Bytes = w.BytesWritten()
	} else {
		info, err := os.Stat(b.current.Path)
		if err != nil {
			return &IOError{Op: "stat", Path: b.current.Path, Err: err}
		}
		b.current.Bytes = info.Size()
	}

	b.files = append(b.files, b.current)
	b.opts.logger.Info("Closed output file",
		zap.String("path", b.current.Path),
		zap.Int64("rows", b.current.Rows),
		zap.Int("row_groups", b.current.RowGroups),
		zap.Int64("bytes", b.current.Bytes))
	return nil
}

// abort closes a partially written file. The file is left on disk.
func (b *boundedWriter) abort() {
	if b.writer == nil {
		return
	}
	if err := b.writer.Close(); err != nil {
		b.opts.logger.Warn("Failed to close partial output file",
			zap.String("path", b.current.Path), zap.Error(err))
	}
	b.writer = nil
}
