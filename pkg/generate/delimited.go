package generate

import (
	"context"
	"fmt"
	"os"

	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/batch"
	"github.com/TFMV/datahobbit/pkg/core"
	"github.com/TFMV/datahobbit/pkg/encoder"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/TFMV/datahobbit/pkg/writers"
	"go.uber.org/zap"
)

// Delimited loads the schema at schemaPath and writes a header line followed
// by records rows to outputPath, separated by delimiter. Rows are generated in
// parallel chunks and written through a single sink.
func Delimited(ctx context.Context, schemaPath, outputPath string, records int64, delimiter byte, opts ...Option) error {
	if err := ValidateDelimiter(delimiter); err != nil {
		return err
	}
	s, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}
	_, err = DelimitedSchema(ctx, s, outputPath, records, delimiter, opts...)
	return err
}

// DelimitedSchema is Delimited for an already loaded schema. It returns the
// stats of the written file.
func DelimitedSchema(ctx context.Context, s *schema.Schema, outputPath string, records int64, delimiter byte, opts ...Option) (metrics.FileStats, error) {
	o := newOptions(core.FormatCSV, opts)
	stats := metrics.FileStats{Path: outputPath}

	if err := ValidateDelimiter(delimiter); err != nil {
		return stats, err
	}
	if writers.IsColumnar(o.format) {
		return stats, fmt.Errorf("%s is not a line-oriented format", o.format)
	}
	if err := writers.ValidateCompression(o.format, o.compression); err != nil {
		return stats, err
	}
	if records < 0 {
		return stats, fmt.Errorf("records must not be negative: %d", records)
	}

	producer, err := batch.NewProducer(s)
	if err != nil {
		return stats, err
	}
	enc, err := encoder.New(s, encoder.WithAllocator(o.allocator))
	if err != nil {
		return stats, err
	}

	sink, err := o.factory.CreateLineSink(core.WriterConfig{
		Format:    o.format,
		Path:      outputPath,
		Schema:    enc.Schema(),
		Delimiter: rune(delimiter),
		Allocator: o.allocator,
	})
	if err != nil {
		return stats, &IOError{Op: "create", Path: outputPath, Err: err}
	}

	shard := batch.ShardOptions{
		Records:   records,
		ChunkSize: o.chunkSize,
		Workers:   o.workers,
		Seed:      o.seed,
		Ordered:   o.ordered,
	}
	o.logger.Info("Starting line generation",
		zap.String("format", o.format),
		zap.String("path", outputPath),
		zap.Int64("records", records),
		zap.Int("chunks", shard.NumChunks()),
		zap.Bool("ordered", o.ordered))

	if err := sink.WriteHeader(); err != nil {
		sink.Close()
		return stats, &IOError{Op: "write", Path: outputPath, Err: err}
	}

	o.progress.Start(records, "generating")
	err = producer.Shard(ctx, shard, func(c batch.Chunk) error {
		rec, err := enc.Encode(c.Rows)
		if err != nil {
			return err
		}
		defer rec.Release()

		if err := sink.Write(ctx, rec); err != nil {
			return ioError("write", outputPath, err)
		}
		o.progress.Add(len(c.Rows))
		o.logger.Debug("Wrote chunk",
			zap.Int("index", c.Index),
			zap.Int64("start", c.Start),
			zap.Int("rows", len(c.Rows)))
		return nil
	})
	o.progress.Finish()
	if err != nil {
		sink.Close()
		return stats, err
	}

	if err := sink.Close(); err != nil {
		return stats, &IOError{Op: "close", Path: outputPath, Err: err}
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return stats, &IOError{Op: "stat", Path: outputPath, Err: err}
	}
	stats.Rows = records
	stats.Bytes = info.Size()

	o.logger.Info("Line generation complete",
		zap.String("path", outputPath),
		zap.Int64("records", records),
		zap.Int64("bytes", stats.Bytes))
	return stats, nil
}
