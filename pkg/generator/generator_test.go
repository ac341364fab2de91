package generator

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samples = 2000

func sample(t *testing.T, tag schema.TypeTag) []string {
	t.Helper()
	fn, err := Resolve(tag)
	require.NoError(t, err)

	f := NewFaker(42)
	out := make([]string, samples)
	for i := range out {
		out[i] = fn(f)
	}
	return out
}

func TestIntegerRange(t *testing.T) {
	for _, v := range sample(t, schema.Integer) {
		n, err := strconv.ParseInt(v, 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(0))
		assert.Less(t, n, int64(IntegerMax))
	}
}

func TestFloatRange(t *testing.T) {
	for _, v := range sample(t, schema.Float) {
		n, err := strconv.ParseFloat(v, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0.0)
		assert.Less(t, n, FloatMax)
	}
}

func TestBooleanText(t *testing.T) {
	seen := map[string]int{}
	for _, v := range sample(t, schema.Boolean) {
		require.Contains(t, []string{"true", "false"}, v)
		seen[v]++
	}
	// A fair coin over 2000 draws lands both ways.
	assert.Positive(t, seen["true"])
	assert.Positive(t, seen["false"])
}

func TestEmailHasAt(t *testing.T) {
	for _, v := range sample(t, schema.Email) {
		assert.Contains(t, v, "@")
	}
}

func TestPasswordLength(t *testing.T) {
	for _, v := range sample(t, schema.Password) {
		n := utf8.RuneCountInString(v)
		assert.GreaterOrEqual(t, n, PasswordMinLen)
		assert.Less(t, n, PasswordMaxLen)
	}
}

func TestSentenceWordCount(t *testing.T) {
	for _, v := range sample(t, schema.Sentence) {
		n := len(strings.Fields(v))
		assert.GreaterOrEqual(t, n, sentenceMinLen)
		assert.Less(t, n, sentenceMaxLen)
	}
}

func TestTextGeneratorsNonEmpty(t *testing.T) {
	for _, tag := range []schema.TypeTag{schema.String, schema.Name, schema.FirstName, schema.LastName, schema.PhoneNumber} {
		for _, v := range sample(t, tag)[:100] {
			assert.NotEmpty(t, v, "tag %s", tag)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("zipcode")
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrUnsupportedType))
	assert.Contains(t, err.Error(), "zipcode")
}

func TestTagsCoverSchema(t *testing.T) {
	assert.Equal(t, schema.TypeTags, Tags())
}

func TestForSchema(t *testing.T) {
	s := &schema.Schema{Columns: []schema.ColumnSpec{
		{Name: "id", Type: schema.Integer},
		{Name: "mail", Type: schema.Email},
	}}
	funcs, err := ForSchema(s)
	require.NoError(t, err)
	assert.Len(t, funcs, 2)

	s.Columns = append(s.Columns, schema.ColumnSpec{Name: "x", Type: "bogus"})
	_, err = ForSchema(s)
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)
}

func TestSeededFakerIsReproducible(t *testing.T) {
	fn, err := Resolve(schema.Name)
	require.NoError(t, err)

	a, b := NewFaker(7), NewFaker(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, fn(a), fn(b))
	}
}

func TestShardFakersDiffer(t *testing.T) {
	fn, err := Resolve(schema.Sentence)
	require.NoError(t, err)

	assert.Equal(t, fn(ShardFaker(9, 3)), fn(ShardFaker(9, 3)))
	assert.NotEqual(t, fn(ShardFaker(9, 3)), fn(ShardFaker(9, 4)))
}

func TestConcurrentUse(t *testing.T) {
	funcs, err := ForSchema(&schema.Schema{Columns: []schema.ColumnSpec{
		{Name: "a", Type: schema.Integer},
		{Name: "b", Type: schema.Name},
	}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			f := ShardFaker(1, w)
			for i := 0; i < 500; i++ {
				for _, fn := range funcs {
					_ = fn(f)
				}
			}
		}(w)
	}
	wg.Wait()
}
