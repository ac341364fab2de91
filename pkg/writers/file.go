package writers

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// bufferSize is the buffered writer size in front of every output file.
const bufferSize = 1 << 20

// fileSink is a buffered output file that counts the bytes reaching it.
type fileSink struct {
	path    string
	file    *os.File
	buf     *bufio.Writer
	written int64
}

func createFile(path string) (*fileSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	s := &fileSink{path: path, file: file}
	s.buf = bufio.NewWriterSize(countingWriter{w: file, n: &s.written}, bufferSize)
	return s, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *fileSink) flush() error {
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, err)
	}
	return nil
}

// close flushes, syncs and closes the file. The first error wins but the file
// is always closed.
func (s *fileSink) close() error {
	if s.file == nil {
		return nil
	}
	err := s.flush()
	if err == nil {
		if syncErr := s.file.Sync(); syncErr != nil {
			err = fmt.Errorf("failed to sync %s: %w", s.path, syncErr)
		}
	}
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close %s: %w", s.path, closeErr)
	}
	s.file = nil
	return err
}

type countingWriter struct {
	w io.Writer
	n *int64
}

func (c countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}
