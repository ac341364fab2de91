package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TFMV/datahobbit/pkg/generator"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducer(t *testing.T) *Producer {
	t.Helper()
	s, err := schema.New(
		schema.ColumnSpec{Name: "id", Type: schema.Integer},
		schema.ColumnSpec{Name: "email", Type: schema.Email},
		schema.ColumnSpec{Name: "active", Type: schema.Boolean},
	)
	require.NoError(t, err)
	p, err := NewProducer(s)
	require.NoError(t, err)
	return p
}

func TestProduce(t *testing.T) {
	p := testProducer(t)

	rows := p.Produce(generator.NewFaker(7), 25)
	require.Len(t, rows, 25)
	for _, row := range rows {
		assert.Len(t, row, 3)
		assert.Contains(t, row[1], "@")
	}

	assert.Empty(t, p.Produce(generator.NewFaker(7), 0))
	assert.Empty(t, p.Produce(generator.NewFaker(7), -3))
}

func TestNewProducerUnsupportedType(t *testing.T) {
	s := &schema.Schema{Columns: []schema.ColumnSpec{{Name: "x", Type: "uuid"}}}
	_, err := NewProducer(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnsupportedType)
}

func TestNumChunks(t *testing.T) {
	tests := []struct {
		records int64
		chunk   int
		want    int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25_000, 0, 3},
	}
	for _, tt := range tests {
		got := ShardOptions{Records: tt.records, ChunkSize: tt.chunk}.NumChunks()
		assert.Equal(t, tt.want, got, "records=%d chunk=%d", tt.records, tt.chunk)
	}
}

func TestShardOrdered(t *testing.T) {
	p := testProducer(t)
	opts := ShardOptions{Records: 1055, ChunkSize: 100, Workers: 4, Seed: 3, Ordered: true}

	var got []Chunk
	err := p.Shard(context.Background(), opts, func(c Chunk) error {
		got = append(got, c)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 11)

	var total int
	for i, c := range got {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, int64(i*100), c.Start)
		total += len(c.Rows)
	}
	assert.Equal(t, 1055, total)
	assert.Len(t, got[10].Rows, 55)
}

func TestShardUnorderedCoversAllChunks(t *testing.T) {
	p := testProducer(t)
	opts := ShardOptions{Records: 5000, ChunkSize: 300, Workers: 8}

	seen := map[int]int{}
	var rows int
	err := p.Shard(context.Background(), opts, func(c Chunk) error {
		seen[c.Index]++
		rows += len(c.Rows)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, opts.NumChunks())
	for idx, n := range seen {
		assert.Equal(t, 1, n, "chunk %d delivered more than once", idx)
	}
	assert.Equal(t, 5000, rows)
}

func TestShardSerializesSink(t *testing.T) {
	p := testProducer(t)
	opts := ShardOptions{Records: 2000, ChunkSize: 50, Workers: 8}

	var active int32
	err := p.Shard(context.Background(), opts, func(Chunk) error {
		if atomic.AddInt32(&active, 1) != 1 {
			return errors.New("concurrent sink call")
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	})
	require.NoError(t, err)
}

func TestShardSeededReproducible(t *testing.T) {
	p := testProducer(t)
	collect := func(workers int) [][]string {
		var out [][]string
		opts := ShardOptions{Records: 700, ChunkSize: 64, Workers: workers, Seed: 99, Ordered: true}
		require.NoError(t, p.Shard(context.Background(), opts, func(c Chunk) error {
			for _, r := range c.Rows {
				out = append(out, r)
			}
			return nil
		}))
		return out
	}

	a := collect(1)
	b := collect(6)
	require.Len(t, a, 700)
	assert.Equal(t, a, b)
}

func TestShardSinkError(t *testing.T) {
	p := testProducer(t)
	boom := errors.New("boom")
	opts := ShardOptions{Records: 10_000, ChunkSize: 10, Workers: 4, Ordered: true}

	var calls int
	err := p.Shard(context.Background(), opts, func(Chunk) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls, opts.NumChunks())
}

func TestShardCancelled(t *testing.T) {
	p := testProducer(t)
	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	opts := ShardOptions{Records: 100_000, ChunkSize: 10, Workers: 2}
	err := p.Shard(ctx, opts, func(Chunk) error {
		once.Do(cancel)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShardZeroRecords(t *testing.T) {
	p := testProducer(t)
	called := false
	err := p.Shard(context.Background(), ShardOptions{}, func(Chunk) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
