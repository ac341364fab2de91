package generate

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrIO is matched by IOError.
	ErrIO = errors.New("i/o error")

	// ErrInvalidDelimiter is returned for a delimiter that is not a single
	// ASCII byte usable as a CSV field separator.
	ErrInvalidDelimiter = errors.New("delimiter must be a single ASCII character other than '\"', '\\r' or '\\n'")
)

// IOError reports a failed file operation on an output file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

func (e *IOError) Code() string { return "IO_ERROR" }

// ValidateDelimiter checks that d can separate CSV fields.
func ValidateDelimiter(d byte) error {
	if d == 0 || d > 0x7f || d == '"' || d == '\r' || d == '\n' {
		return ErrInvalidDelimiter
	}
	return nil
}

// ParseDelimiter converts user input into a delimiter byte. The escape
// sequence `\t` is accepted for tab.
func ParseDelimiter(s string) (byte, error) {
	if s == `\t` {
		s = "\t"
	}
	if len(s) != 1 {
		return 0, ErrInvalidDelimiter
	}
	if err := ValidateDelimiter(s[0]); err != nil {
		return 0, err
	}
	return s[0], nil
}

// ioError wraps err as an IOError unless it is a context error.
func ioError(op, path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
