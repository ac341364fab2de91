package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// TypeMetadataKey is the field metadata key recording a column's type tag in
// columnar outputs.
const TypeMetadataKey = "datahobbit.type"

// ArrowSchema derives the Arrow schema used for columnar output. Every field
// is non-nullable: generators always produce a value.
func (s *Schema) ArrowSchema() (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(s.Columns))
	for i, col := range s.Columns {
		dt, err := col.Type.ArrowType()
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{
			Name:     col.Name,
			Type:     dt,
			Nullable: false,
			Metadata: arrow.NewMetadata([]string{TypeMetadataKey}, []string{string(col.Type)}),
		}
	}
	return arrow.NewSchema(fields, nil), nil
}
