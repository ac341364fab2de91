package schema

import (
	"errors"
	"fmt"
)

// ValidationRule checks one property of a schema.
type ValidationRule interface {
	// Validate returns an error describing the first violation found.
	Validate(s *Schema) error

	// Name returns the human-readable name of the rule.
	Name() string
}

// DefaultRules are applied by Schema.Validate.
var DefaultRules = []ValidationRule{
	&NonEmptyRule{},
	&ColumnNameRule{},
	&UniqueNameRule{},
	&KnownTypeRule{},
}

// Validate runs DefaultRules against the schema. Unknown type tags surface as
// *UnsupportedTypeError; every other violation wraps ErrSchemaLoad.
func (s *Schema) Validate() error {
	return ValidateWith(s, DefaultRules...)
}

// ValidateWith runs the given rules in order and stops at the first failure.
func ValidateWith(s *Schema, rules ...ValidationRule) error {
	for _, rule := range rules {
		if err := rule.Validate(s); err != nil {
			var unsupported *UnsupportedTypeError
			if errors.As(err, &unsupported) {
				return err
			}
			return &LoadError{Err: fmt.Errorf("%s: %w", rule.Name(), err)}
		}
	}
	return nil
}

// NonEmptyRule rejects schemas without columns.
type NonEmptyRule struct{}

// Validate implements ValidationRule.Validate.
func (r *NonEmptyRule) Validate(s *Schema) error {
	if s == nil || len(s.Columns) == 0 {
		return errors.New("schema declares no columns")
	}
	return nil
}

// Name implements ValidationRule.Name.
func (r *NonEmptyRule) Name() string { return "NonEmptyRule" }

// ColumnNameRule requires every column to have a name.
type ColumnNameRule struct{}

// Validate implements ValidationRule.Validate.
func (r *ColumnNameRule) Validate(s *Schema) error {
	for i, col := range s.Columns {
		if col.Name == "" {
			return fmt.Errorf("column %d has an empty name", i)
		}
	}
	return nil
}

// Name implements ValidationRule.Name.
func (r *ColumnNameRule) Name() string { return "ColumnNameRule" }

// UniqueNameRule rejects duplicate column names, which would produce ambiguous
// CSV headers and Parquet fields.
type UniqueNameRule struct{}

// Validate implements ValidationRule.Validate.
func (r *UniqueNameRule) Validate(s *Schema) error {
	seen := make(map[string]int, len(s.Columns))
	for i, col := range s.Columns {
		if first, ok := seen[col.Name]; ok {
			return fmt.Errorf("column '%s' declared twice (positions %d and %d)", col.Name, first, i)
		}
		seen[col.Name] = i
	}
	return nil
}

// Name implements ValidationRule.Name.
func (r *UniqueNameRule) Name() string { return "UniqueNameRule" }

// KnownTypeRule requires every type tag to be supported.
type KnownTypeRule struct{}

// Validate implements ValidationRule.Validate.
func (r *KnownTypeRule) Validate(s *Schema) error {
	for _, col := range s.Columns {
		if _, err := col.Type.ArrowType(); err != nil {
			return err
		}
	}
	return nil
}

// Name implements ValidationRule.Name.
func (r *KnownTypeRule) Name() string { return "KnownTypeRule" }
