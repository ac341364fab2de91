// Package batch produces rows of generated values from a schema.
package batch

import (
	"github.com/TFMV/datahobbit/pkg/generator"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/brianvoe/gofakeit/v7"
)

// Row holds one generated value per schema column, in column order.
type Row []string

// Producer generates rows for a fixed schema. It holds only the resolved
// generators, so one Producer may serve many goroutines provided each passes
// its own faker.
type Producer struct {
	schema *schema.Schema
	gens   []generator.Func
}

// NewProducer resolves a generator for every column of s.
func NewProducer(s *schema.Schema) (*Producer, error) {
	gens, err := generator.ForSchema(s)
	if err != nil {
		return nil, err
	}
	return &Producer{schema: s, gens: gens}, nil
}

// Schema returns the schema rows are produced for.
func (p *Producer) Schema() *schema.Schema {
	return p.schema
}

// Row generates a single row.
func (p *Producer) Row(f *gofakeit.Faker) Row {
	row := make(Row, len(p.gens))
	for i, gen := range p.gens {
		row[i] = gen(f)
	}
	return row
}

// Produce generates count rows sequentially.
func (p *Producer) Produce(f *gofakeit.Faker, count int) []Row {
	if count <= 0 {
		return nil
	}
	rows := make([]Row, count)
	for i := range rows {
		rows[i] = p.Row(f)
	}
	return rows
}
