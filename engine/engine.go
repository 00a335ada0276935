package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/resource"
	"github.com/hupe1980/dirt/selector"
	"github.com/hupe1980/dirt/targets"
)

// Block is the result of one partition of the target set.
type Block struct {
	Seq        int                  // position in the partition
	Targets    []int                // targets assigned to the block, ascending
	Records    []selector.Candidate // ordered by target, then rank
	Skipped    []int                // targets that produced no records
	Degenerate int                  // records with a non-finite score
	Elapsed    time.Duration
}

// First returns the first assigned target.
func (b *Block) First() int { return b.Targets[0] }

// Last returns the last assigned target.
func (b *Block) Last() int { return b.Targets[len(b.Targets)-1] }

// Stats summarizes a run.
type Stats struct {
	Blocks     int
	Targets    int
	Records    int
	Skipped    int
	Degenerate int
	Elapsed    time.Duration
}

// Engine computes candidate rankings for sets of targets.
type Engine struct {
	m      *matrix.Matrix
	layout matrix.Layout
	cfg    Config

	rc       *resource.Controller
	metrics  MetricsObserver
	logger   *slog.Logger
	progress *rate.Sometimes
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithResourceController sets the resource controller for the engine.
func WithResourceController(rc *resource.Controller) Option {
	return func(e *Engine) {
		e.rc = rc
	}
}

// WithMetricsObserver sets the metrics observer for the engine.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(e *Engine) {
		if observer != nil {
			e.metrics = observer
		}
	}
}

// WithProgressInterval sets how often progress is logged. Zero disables
// progress logging.
func WithProgressInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d <= 0 {
			e.progress = nil
			return
		}
		e.progress = &rate.Sometimes{Interval: d}
	}
}

// New creates an Engine for m and a resolved layout.
func New(m *matrix.Matrix, layout matrix.Layout, cfg Config, optFns ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	// Fail fast on layout and top-n problems before any worker starts.
	if _, err := selector.New(m, layout, selector.Options{TopN: cfg.TopN, Epsilon: cfg.Epsilon}); err != nil {
		return nil, err
	}

	e := &Engine{
		m:        m,
		layout:   layout,
		cfg:      cfg,
		metrics:  NoopMetricsObserver{},
		progress: &rate.Sometimes{Interval: 10 * time.Second},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(e)
		}
	}
	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Layout returns the resolved column layout.
func (e *Engine) Layout() matrix.Layout { return e.layout }

// ranges recovers the label bounds of the resolved layout.
func (e *Engine) ranges() matrix.RangeConfig {
	c, a := e.layout.Control.Names, e.layout.All.Names
	return matrix.RangeConfig{
		ControlStart: c[0],
		ControlEnd:   c[len(c)-1],
		AllStart:     a[0],
		AllEnd:       a[len(a)-1],
	}
}

// Matrix returns the matrix the engine reads.
func (e *Engine) Matrix() *matrix.Matrix { return e.m }

// Plan returns the blocks a run over set would compute.
func (e *Engine) Plan(set *targets.Set) []targets.Block {
	if e.cfg.BlockSize > 0 {
		return set.Chunks(e.cfg.BlockSize)
	}
	return set.Partition(e.cfg.Blocks)
}

// Run computes every block of set and hands each to sink as it completes.
// Blocks may reach the sink in any order and concurrently.
func (e *Engine) Run(ctx context.Context, set *targets.Set, sink Sink) (Stats, error) {
	if set == nil || set.IsEmpty() {
		return Stats{}, ErrNoTargets
	}
	if sink == nil {
		return Stats{}, fmt.Errorf("%w: nil sink", ErrInvalidArgument)
	}

	start := time.Now()
	plan := e.Plan(set)

	workers := e.rc.MaxWorkers()
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu    sync.Mutex
		stats = Stats{Blocks: len(plan)}
		done  atomic.Int64
		total = set.Len()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, tb := range plan {
		g.Go(func() error {
			if err := e.rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer e.rc.ReleaseWorker()

			bytes := e.estimateBytes(tb.Len())
			if err := e.rc.AcquireMemory(gctx, bytes); err != nil {
				return err
			}
			defer func() {
				e.rc.ReleaseMemory(bytes)
				e.metrics.OnMemory(e.rc.MemoryUsage())
			}()
			e.metrics.OnMemory(e.rc.MemoryUsage())

			blk, err := e.runBlock(gctx, tb, &done, total)
			if err != nil {
				return err
			}

			err = sink.WriteBlock(gctx, blk)
			e.metrics.OnBlock(blk.Elapsed, len(blk.Targets), len(blk.Records), err)
			if err != nil {
				return fmt.Errorf("engine: write block %d: %w", blk.Seq, err)
			}

			e.logDebug(gctx, "block completed",
				"block", blk.Seq,
				"first_target", blk.First(),
				"last_target", blk.Last(),
				"records", len(blk.Records),
				"elapsed", blk.Elapsed,
			)

			mu.Lock()
			stats.Targets += len(blk.Targets) - len(blk.Skipped)
			stats.Records += len(blk.Records)
			stats.Skipped += len(blk.Skipped)
			stats.Degenerate += blk.Degenerate
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	stats.Elapsed = time.Since(start)
	return stats, err
}

func (e *Engine) runBlock(ctx context.Context, tb targets.Block, done *atomic.Int64, total int) (*Block, error) {
	start := time.Now()
	sel, err := selector.New(e.m, e.layout, selector.Options{TopN: e.cfg.TopN, Epsilon: e.cfg.Epsilon})
	if err != nil {
		return nil, err
	}

	blk := &Block{
		Seq:     tb.Seq,
		Targets: tb.Targets,
		Records: make([]selector.Candidate, 0, tb.Len()*e.cfg.TopN),
	}

	for _, target := range tb.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t0 := time.Now()
		cands, err := sel.Find(target)
		if err != nil {
			if !errors.Is(err, matrix.ErrIndexOutOfRange) {
				return nil, err
			}
			blk.Skipped = append(blk.Skipped, target)
			e.metrics.OnTarget(time.Since(t0), 0, 0, err)
			e.logWarn(ctx, "target skipped", "target", target, "error", err)
			continue
		}

		deg := selector.CountDegenerate(cands)
		if deg > 0 {
			blk.Degenerate += deg
			e.logWarn(ctx, "degenerate scores",
				"target", target,
				"gene_id", cands[0].Target,
				"degenerate", deg,
			)
		}
		blk.Records = append(blk.Records, cands...)
		e.metrics.OnTarget(time.Since(t0), len(cands), deg, nil)

		n := done.Add(1)
		if e.progress != nil && e.logger != nil {
			e.progress.Do(func() {
				e.logger.InfoContext(ctx, "progress", "done", n, "total", total)
			})
		}
	}

	blk.Elapsed = time.Since(start)
	return blk, nil
}

// estimateBytes approximates the memory held by a block's records.
func (e *Engine) estimateBytes(targets int) int64 {
	perRecord := int64(e.layout.All.Len()+1)*8 + 128
	return int64(targets) * int64(e.cfg.TopN) * perRecord
}

func (e *Engine) logDebug(ctx context.Context, msg string, args ...any) {
	if e.logger != nil {
		e.logger.DebugContext(ctx, msg, args...)
	}
}

func (e *Engine) logWarn(ctx context.Context, msg string, args ...any) {
	if e.logger != nil {
		e.logger.WarnContext(ctx, msg, args...)
	}
}
