// Package schema models the declarative column schema that drives data generation.
package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// TypeTag names the kind of fake value a column holds.
type TypeTag string

// Supported type tags. The set is closed; adding a tag means adding a generator
// case in pkg/generator and an encoding case in ArrowType.
const (
	Integer     TypeTag = "integer"
	Float       TypeTag = "float"
	Boolean     TypeTag = "boolean"
	String      TypeTag = "string"
	Name        TypeTag = "name"
	FirstName   TypeTag = "first_name"
	LastName    TypeTag = "last_name"
	Email       TypeTag = "email"
	Password    TypeTag = "password"
	Sentence    TypeTag = "sentence"
	PhoneNumber TypeTag = "phone_number"
)

// TypeTags lists every supported tag in declaration order.
var TypeTags = []TypeTag{
	Integer, Float, Boolean, String, Name, FirstName, LastName,
	Email, Password, Sentence, PhoneNumber,
}

// Known reports whether t is one of the supported tags.
func (t TypeTag) Known() bool {
	_, err := t.ArrowType()
	return err == nil
}

// ArrowType returns the physical Arrow type used when t is written to a
// columnar container.
func (t TypeTag) ArrowType() (arrow.DataType, error) {
	switch t {
	case Integer:
		return arrow.PrimitiveTypes.Int64, nil
	case Float:
		return arrow.PrimitiveTypes.Float64, nil
	case Boolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case String, Name, FirstName, LastName, Email, Password, Sentence, PhoneNumber:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, &UnsupportedTypeError{Tag: string(t)}
	}
}

// ColumnSpec declares a single output column.
type ColumnSpec struct {
	Name string  `mapstructure:"name" json:"name"`
	Type TypeTag `mapstructure:"type" json:"type"`
}

// Schema is the ordered list of columns. Order defines both the generated row
// layout and the output column order.
type Schema struct {
	Columns []ColumnSpec `mapstructure:"columns" json:"columns"`
}

// New builds a schema from columns and validates it.
func New(columns ...ColumnSpec) (*Schema, error) {
	s := &Schema{Columns: columns}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.Columns)
}

// Names returns the column names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}
