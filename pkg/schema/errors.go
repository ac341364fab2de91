package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaLoad is matched by every error returned when a schema document
	// cannot be read or decoded.
	ErrSchemaLoad = errors.New("schema load error")

	// ErrUnsupportedType is matched by UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported data type")
)

// LoadError reports a schema document that is unreadable or malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load schema: %v", e.Err)
	}
	return fmt.Sprintf("failed to load schema %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrSchemaLoad }

// Code returns the error code recorded in run reports.
func (e *LoadError) Code() string { return "SCHEMA_LOAD" }

// UnsupportedTypeError names a type tag with no generator.
type UnsupportedTypeError struct {
	Tag string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported data type: %s", e.Tag)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

func (e *UnsupportedTypeError) Code() string { return "UNSUPPORTED_TYPE" }
