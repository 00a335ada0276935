package dirt

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/hupe1980/dirt/engine"
	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/selector"
	"github.com/hupe1980/dirt/targets"
)

// Finder ranks candidate index genes for targets of one matrix.
// It is safe for concurrent use.
type Finder struct {
	m       *matrix.Matrix
	layout  matrix.Layout
	opts    options
	engine  *engine.Engine
	metrics MetricsCollector
	logger  *Logger
}

// New creates a Finder for m. The sample ranges are resolved immediately, so
// configuration errors surface here rather than on the first lookup.
func New(m *matrix.Matrix, optFns ...Option) (*Finder, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidArgument)
	}

	opts := applyOptions(optFns)
	if opts.topN <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopN, opts.topN)
	}

	layout, err := m.Layout(opts.ranges)
	if err != nil {
		return nil, translateError(err)
	}

	eng, err := engine.New(m, layout, engine.Config{
		TopN:      opts.topN,
		Epsilon:   opts.epsilon,
		Blocks:    opts.blocks,
		BlockSize: opts.blockSize,
	},
		engine.WithLogger(opts.logger.Logger),
		engine.WithResourceController(opts.rc),
		engine.WithMetricsObserver(engineObserver{c: opts.metricsCollector}),
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &Finder{
		m:       m,
		layout:  layout,
		opts:    opts,
		engine:  eng,
		metrics: opts.metricsCollector,
		logger:  opts.logger,
	}, nil
}

// Matrix returns the matrix the Finder reads.
func (f *Finder) Matrix() *matrix.Matrix { return f.m }

// Layout returns the resolved control and all columns.
func (f *Finder) Layout() matrix.Layout { return f.layout }

// TopN returns the number of candidates per target.
func (f *Finder) TopN() int { return f.opts.topN }

// Engine returns the underlying block engine.
func (f *Finder) Engine() *engine.Engine { return f.engine }

// FindTopCandidates returns the best candidates for the target at row
// targetIndex, ordered by ascending NDIV.
func (f *Finder) FindTopCandidates(ctx context.Context, targetIndex int) ([]selector.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	sel, err := selector.New(f.m, f.layout, selector.Options{TopN: f.opts.topN, Epsilon: f.opts.epsilon})
	if err != nil {
		return nil, translateError(err)
	}

	cands, err := sel.Find(targetIndex)
	if err != nil {
		err = translateError(err)
		f.metrics.RecordTarget(0, 0, time.Since(start), err)
		f.logger.LogTarget(ctx, targetIndex, 0, err)
		return nil, err
	}

	deg := selector.CountDegenerate(cands)
	f.metrics.RecordTarget(len(cands), deg, time.Since(start), nil)
	f.logger.LogTarget(ctx, targetIndex, len(cands), nil)
	if deg > 0 {
		f.logger.LogDegenerate(ctx, targetIndex, cands[0].Target, deg)
	}
	return cands, nil
}

// Run scores every target in set and hands finished blocks to sink.
func (f *Finder) Run(ctx context.Context, set *targets.Set, sink engine.Sink) (engine.Stats, error) {
	stats, err := f.engine.Run(ctx, set, sink)
	err = translateError(err)
	f.logger.LogRun(ctx, stats, err)
	return stats, err
}

// Collect runs set and returns all records in block order.
func (f *Finder) Collect(ctx context.Context, set *targets.Set) ([]selector.Candidate, engine.Stats, error) {
	col := engine.NewCollector()
	stats, err := f.Run(ctx, set, col)
	if err != nil {
		return nil, stats, err
	}
	return col.Records(), stats, nil
}

// Candidates yields the candidates of each target in set, target by target.
// Iteration stops at the first error, which is yielded with a zero Candidate.
// Out-of-range targets yield an error wrapping ErrIndexOutOfRange.
func (f *Finder) Candidates(ctx context.Context, set *targets.Set) iter.Seq2[selector.Candidate, error] {
	return func(yield func(selector.Candidate, error) bool) {
		if set == nil || set.IsEmpty() {
			yield(selector.Candidate{}, ErrNoTargets)
			return
		}
		for _, target := range set.Indices() {
			cands, err := f.FindTopCandidates(ctx, target)
			if err != nil {
				yield(selector.Candidate{}, err)
				return
			}
			for _, c := range cands {
				if !yield(c, nil) {
					return
				}
			}
		}
	}
}

// FindTopCandidates is the one-shot form of Finder.FindTopCandidates. It
// resolves cfg against m, scores every other gene against the target, and
// returns the topN best candidates.
func FindTopCandidates(m *matrix.Matrix, targetIndex, topN int, cfg matrix.RangeConfig) ([]selector.Candidate, error) {
	cands, err := selector.FindTopCandidates(m, targetIndex, topN, cfg)
	return cands, translateError(err)
}
