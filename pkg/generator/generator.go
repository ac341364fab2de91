// Package generator maps schema type tags to fake value generators.
//
// Every generator renders its value as text so rows stay uniform until the
// columnar encoder converts them. Generators draw from the *gofakeit.Faker they
// are given and hold no state of their own, so a resolved set can be shared by
// any number of goroutines as long as each uses its own faker.
package generator

import (
	"strconv"

	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/brianvoe/gofakeit/v7"
)

// Func produces one value.
type Func func(f *gofakeit.Faker) string

const (
	// IntegerMax is the exclusive upper bound of integer values.
	IntegerMax = 1000
	// FloatMax is the exclusive upper bound of float values.
	FloatMax = 1000.0

	// PasswordMinLen and PasswordMaxLen bound password lengths; the maximum
	// is exclusive.
	PasswordMinLen = 8
	PasswordMaxLen = 16

	sentenceMinLen = 5
	sentenceMaxLen = 10 // exclusive
)

// Resolve returns the generator for tag.
func Resolve(tag schema.TypeTag) (Func, error) {
	switch tag {
	case schema.Integer:
		return integer, nil
	case schema.Float:
		return float, nil
	case schema.Boolean:
		return boolean, nil
	case schema.String:
		return word, nil
	case schema.Name:
		return name, nil
	case schema.FirstName:
		return firstName, nil
	case schema.LastName:
		return lastName, nil
	case schema.Email:
		return email, nil
	case schema.Password:
		return password, nil
	case schema.Sentence:
		return sentence, nil
	case schema.PhoneNumber:
		return phoneNumber, nil
	default:
		return nil, &schema.UnsupportedTypeError{Tag: string(tag)}
	}
}

// ForSchema resolves one generator per column, in column order.
func ForSchema(s *schema.Schema) ([]Func, error) {
	funcs := make([]Func, len(s.Columns))
	for i, col := range s.Columns {
		fn, err := Resolve(col.Type)
		if err != nil {
			return nil, err
		}
		funcs[i] = fn
	}
	return funcs, nil
}

// Tags lists the tags Resolve accepts.
func Tags() []schema.TypeTag {
	tags := make([]schema.TypeTag, 0, len(schema.TypeTags))
	for _, tag := range schema.TypeTags {
		if _, err := Resolve(tag); err == nil {
			tags = append(tags, tag)
		}
	}
	return tags
}

func integer(f *gofakeit.Faker) string {
	return strconv.Itoa(f.IntN(IntegerMax))
}

func float(f *gofakeit.Faker) string {
	return strconv.FormatFloat(f.Float64Range(0, FloatMax), 'f', -1, 64)
}

func boolean(f *gofakeit.Faker) string {
	return strconv.FormatBool(f.Bool())
}

func word(f *gofakeit.Faker) string { return f.Word() }

func name(f *gofakeit.Faker) string { return f.Name() }

func firstName(f *gofakeit.Faker) string { return f.FirstName() }

func lastName(f *gofakeit.Faker) string { return f.LastName() }

func email(f *gofakeit.Faker) string { return f.Email() }

func password(f *gofakeit.Faker) string {
	n := PasswordMinLen + f.IntN(PasswordMaxLen-PasswordMinLen)
	return f.Password(true, true, true, true, false, n)
}

func sentence(f *gofakeit.Faker) string {
	n := sentenceMinLen + f.IntN(sentenceMaxLen-sentenceMinLen)
	return f.Sentence(n)
}

func phoneNumber(f *gofakeit.Faker) string { return f.PhoneFormatted() }
