// Package resource bounds the workers, result memory and output throughput
// of a run.
package resource

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits. Zero values mean "no limit", except for
// MaxWorkers which falls back to GOMAXPROCS.
type Config struct {
	// MaxWorkers bounds the blocks scored concurrently.
	MaxWorkers int64
	// MemoryLimitBytes bounds the estimated size of the result blocks held
	// in memory at once. Without a limit usage is still tracked.
	MemoryLimitBytes int64
	// IOLimitBytesPerSec bounds matrix reads and result block writes.
	IOLimitBytesPerSec int64
}

// Controller hands out worker slots, result memory and IO bandwidth.
// All methods are safe on a nil *Controller, which imposes no limits.
type Controller struct {
	cfg       Config
	workers   *semaphore.Weighted
	memory    budget
	ioLimiter *rate.Limiter
}

// NewController applies cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = int64(runtime.GOMAXPROCS(0))
	}
	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}
	c.memory.setLimit(cfg.MemoryLimitBytes)
	if cfg.IOLimitBytesPerSec > 0 {
		// One second of traffic may go out as a single burst.
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// Config returns the effective limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// MaxWorkers returns the worker limit, or 0 for a nil controller.
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 0
	}
	return int(c.cfg.MaxWorkers)
}

// AcquireWorker blocks until a worker slot is free or ctx is done.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workers.Acquire(ctx, 1)
}

// TryAcquireWorker takes a worker slot if one is free.
func (c *Controller) TryAcquireWorker() bool {
	return c == nil || c.workers.TryAcquire(1)
}

// ReleaseWorker returns a slot taken with AcquireWorker.
func (c *Controller) ReleaseWorker() {
	if c != nil {
		c.workers.Release(1)
	}
}

// AcquireMemory reserves n bytes for a result block, waiting while the
// limit is exhausted. A block larger than the whole limit waits until it
// can run alone.
func (c *Controller) AcquireMemory(ctx context.Context, n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	return c.memory.acquire(ctx, n)
}

// TryAcquireMemory reserves n bytes if the limit allows it right now.
func (c *Controller) TryAcquireMemory(n int64) bool {
	if c == nil || n <= 0 {
		return true
	}
	return c.memory.tryAcquire(n)
}

// ReleaseMemory returns n bytes reserved with AcquireMemory.
func (c *Controller) ReleaseMemory(n int64) {
	if c != nil && n > 0 {
		c.memory.release(n)
	}
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memory.used.Load()
}

// AcquireIO waits until n bytes of IO are allowed. Requests larger than
// the burst are charged in burst-sized steps.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	for burst := c.ioLimiter.Burst(); n > 0; n -= burst {
		if err := c.ioLimiter.WaitN(ctx, min(n, burst)); err != nil {
			return err
		}
	}
	return nil
}

// budget tracks reserved bytes against an optional limit.
type budget struct {
	limit int64
	sem   *semaphore.Weighted // nil without a limit
	used  atomic.Int64
}

func (b *budget) setLimit(limit int64) {
	b.limit = limit
	if limit > 0 {
		b.sem = semaphore.NewWeighted(limit)
	}
}

// weight clamps n to the limit so oversized requests can still be served.
func (b *budget) weight(n int64) int64 {
	return min(n, b.limit)
}

func (b *budget) acquire(ctx context.Context, n int64) error {
	if b.sem != nil {
		if err := b.sem.Acquire(ctx, b.weight(n)); err != nil {
			return err
		}
	}
	b.used.Add(n)
	return nil
}

func (b *budget) tryAcquire(n int64) bool {
	if b.sem != nil && !b.sem.TryAcquire(b.weight(n)) {
		return false
	}
	b.used.Add(n)
	return true
}

func (b *budget) release(n int64) {
	if b.sem != nil {
		b.sem.Release(b.weight(n))
	}
	b.used.Add(-n)
}
