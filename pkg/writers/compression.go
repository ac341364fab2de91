package writers

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/parquet/compress"
)

// Compression codec names accepted in WriterConfig.Compression.
const (
	CompressionNone   = "none"
	CompressionSnappy = "snappy"
	CompressionGzip   = "gzip"
	CompressionZstd   = "zstd"
	CompressionBrotli = "brotli"
	CompressionLZ4    = "lz4"
)

// ParquetCodec maps a codec name to a Parquet compression codec.
func ParquetCodec(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", CompressionNone:
		return compress.Codecs.Uncompressed, nil
	case CompressionSnappy:
		return compress.Codecs.Snappy, nil
	case CompressionGzip:
		return compress.Codecs.Gzip, nil
	case CompressionZstd:
		return compress.Codecs.Zstd, nil
	case CompressionBrotli:
		return compress.Codecs.Brotli, nil
	case CompressionLZ4:
		// The legacy LZ4 framing is not writable; LZ4_RAW is what readers expect.
		return compress.Codecs.Lz4Raw, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported parquet compression: %s", name)
	}
}

// ArrowCodec maps a codec name to Arrow IPC writer options.
func ArrowCodec(name string) ([]ipc.Option, error) {
	switch strings.ToLower(name) {
	case "", CompressionNone:
		return nil, nil
	case CompressionLZ4:
		return []ipc.Option{ipc.WithLZ4()}, nil
	case CompressionZstd:
		return []ipc.Option{ipc.WithZstd()}, nil
	default:
		return nil, fmt.Errorf("unsupported arrow compression: %s", name)
	}
}

// ValidateCompression reports whether name is usable with format.
func ValidateCompression(format, name string) error {
	switch format {
	case "parquet":
		_, err := ParquetCodec(name)
		return err
	case "arrow":
		_, err := ArrowCodec(name)
		return err
	default:
		if name != "" && !strings.EqualFold(name, CompressionNone) {
			return fmt.Errorf("compression is not supported for %s output", format)
		}
		return nil
	}
}
