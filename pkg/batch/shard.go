package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/TFMV/datahobbit/pkg/generator"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the number of rows generated per shard.
const DefaultChunkSize = 10_000

// ShardOptions configures parallel production.
type ShardOptions struct {
	// Records is the total number of rows to produce.
	Records int64

	// ChunkSize is the number of rows per chunk. Defaults to DefaultChunkSize.
	ChunkSize int

	// Workers caps the number of chunks generated concurrently.
	// Defaults to runtime.NumCPU().
	Workers int

	// Seed seeds every chunk's faker. Zero means unseeded.
	Seed uint64

	// Ordered delivers chunks in index order. Otherwise chunks are delivered
	// as soon as they are generated.
	Ordered bool
}

// Chunk is a contiguous range of generated rows.
type Chunk struct {
	// Index is the chunk's position in [0, Records) divided by ChunkSize.
	Index int

	// Start is the row index of Rows[0].
	Start int64

	Rows []Row
}

// Sink receives completed chunks. Calls are serialized.
type Sink func(Chunk) error

func (o ShardOptions) withDefaults() ShardOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// NumChunks returns how many chunks Records splits into.
func (o ShardOptions) NumChunks() int {
	o = o.withDefaults()
	if o.Records <= 0 {
		return 0
	}
	return int((o.Records + int64(o.ChunkSize) - 1) / int64(o.ChunkSize))
}

// Shard splits [0, Records) into chunks, generates them on a worker pool and
// hands each one to sink. The first error from a worker, the sink or ctx stops
// the run and is returned.
func (p *Producer) Shard(ctx context.Context, opts ShardOptions, sink Sink) error {
	opts = opts.withDefaults()
	n := opts.NumChunks()
	if n == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	d := &deliverer{sink: sink, ordered: opts.Ordered, pending: make(map[int]Chunk)}
	if opts.Ordered {
		// Bounds the chunks held in memory while waiting on a slow predecessor.
		d.window = make(chan struct{}, 2*opts.Workers)
	}

	var stopped error
dispatch:
	for i := 0; i < n; i++ {
		if d.window != nil {
			select {
			case d.window <- struct{}{}:
			case <-gctx.Done():
				stopped = gctx.Err()
				break dispatch
			}
		}
		if err := gctx.Err(); err != nil {
			stopped = err
			break
		}

		idx := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return d.deliver(p.chunk(idx, opts))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if stopped != nil {
		return ctx.Err()
	}
	return nil
}

func (p *Producer) chunk(idx int, opts ShardOptions) Chunk {
	start := int64(idx) * int64(opts.ChunkSize)
	count := opts.ChunkSize
	if remaining := opts.Records - start; remaining < int64(count) {
		count = int(remaining)
	}

	f := generator.ShardFaker(opts.Seed, idx)
	return Chunk{Index: idx, Start: start, Rows: p.Produce(f, count)}
}

// deliverer serializes sink calls and, when ordered, releases chunks strictly
// by index.
type deliverer struct {
	mu      sync.Mutex
	sink    Sink
	ordered bool
	window  chan struct{}
	pending map[int]Chunk
	next    int
}

func (d *deliverer) deliver(c Chunk) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ordered {
		return d.sink(c)
	}

	d.pending[c.Index] = c
	for {
		ready, ok := d.pending[d.next]
		if !ok {
			return nil
		}
		delete(d.pending, d.next)
		if err := d.sink(ready); err != nil {
			return err
		}
		d.next++
		<-d.window
	}
}
