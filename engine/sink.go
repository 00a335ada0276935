package engine

import (
	"context"
	"slices"
	"sync"

	"github.com/hupe1980/dirt/selector"
)

// Sink receives finished blocks. Implementations must be safe for
// concurrent use; blocks arrive in completion order.
type Sink interface {
	WriteBlock(ctx context.Context, b *Block) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, b *Block) error

// WriteBlock implements Sink.
func (f SinkFunc) WriteBlock(ctx context.Context, b *Block) error { return f(ctx, b) }

// Collector keeps every block in memory.
type Collector struct {
	mu     sync.Mutex
	blocks []*Block
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// WriteBlock implements Sink.
func (c *Collector) WriteBlock(_ context.Context, b *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = append(c.blocks, b)
	return nil
}

// Blocks returns the collected blocks ordered by Seq.
func (c *Collector) Blocks() []*Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := slices.Clone(c.blocks)
	slices.SortFunc(out, func(a, b *Block) int { return a.Seq - b.Seq })
	return out
}

// Records concatenates the records of all blocks in block order.
func (c *Collector) Records() []selector.Candidate {
	var out []selector.Candidate
	for _, b := range c.Blocks() {
		out = append(out, b.Records...)
	}
	return out
}

// Tee forwards each block to every sink in order, stopping at the first error.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, b *Block) error {
		for _, s := range sinks {
			if err := s.WriteBlock(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
}
