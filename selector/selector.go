package selector

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dirt/dispersion"
	"github.com/hupe1980/dirt/internal/queue"
	"github.com/hupe1980/dirt/matrix"
)

// DefaultTopN is the number of candidates returned per target by default.
const DefaultTopN = 10

// ErrInvalidTopN is returned when TopN is not positive.
var ErrInvalidTopN = errors.New("selector: top-n must be positive")

// Options configures a Selector.
type Options struct {
	// TopN is the maximum number of candidates per target.
	// Zero selects DefaultTopN.
	TopN int

	// Epsilon is added to every ratio denominator.
	// Zero selects dispersion.Epsilon.
	Epsilon float64
}

func (o Options) withDefaults() (Options, error) {
	if o.TopN == 0 {
		o.TopN = DefaultTopN
	}
	if o.TopN < 0 {
		return o, fmt.Errorf("%w: %d", ErrInvalidTopN, o.TopN)
	}
	if o.Epsilon <= 0 {
		o.Epsilon = dispersion.Epsilon
	}
	return o, nil
}

// Selector finds the top candidates for targets of one matrix and layout.
// It owns a reusable heap, so steady-state ranking allocates only results.
//
// Selector is NOT thread-safe. Use one per goroutine; the matrix itself may
// be shared.
type Selector struct {
	m      *matrix.Matrix
	layout matrix.Layout
	genes  []string
	opts   Options
	heap   *queue.Bounded
}

// New creates a Selector over m using a resolved layout.
func New(m *matrix.Matrix, layout matrix.Layout, opts Options) (*Selector, error) {
	if m == nil {
		return nil, errors.New("selector: nil matrix")
	}
	if layout.Control.Len() == 0 || layout.All.Len() == 0 {
		return nil, &matrix.ConfigurationError{Reason: "layout is not resolved"}
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Selector{
		m:      m,
		layout: layout,
		genes:  m.Genes(),
		opts:   opts,
		heap:   queue.NewBounded(opts.TopN),
	}, nil
}

// TopN returns the configured result size.
func (s *Selector) TopN() int { return s.opts.TopN }

// Layout returns the resolved column layout.
func (s *Selector) Layout() matrix.Layout { return s.layout }

// Find returns up to TopN candidates for the target at row targetIndex,
// best first. The result holds min(TopN, G-1) records when gene
// identifiers are unique.
func (s *Selector) Find(targetIndex int) ([]Candidate, error) {
	target, err := s.m.Row(targetIndex)
	if err != nil {
		return nil, err
	}
	targetID := s.genes[targetIndex]
	scorer := dispersion.NewScorer(target, s.layout.Control.Index, s.opts.Epsilon)

	s.heap.Reset()
	for row, gene := range s.genes {
		if gene == targetID {
			continue
		}
		candidate, _ := s.m.Row(row)
		s.heap.Push(queue.Item{Row: row, Score: scorer.Score(candidate)})
	}

	ranked := s.heap.Drain()
	out := make([]Candidate, len(ranked))
	for i, it := range ranked {
		candidate, _ := s.m.Row(it.Row)
		out[i] = Candidate{
			Target:    targetID,
			Gene:      s.genes[it.Row],
			TargetRow: targetIndex,
			Row:       it.Row,
			Rank:      i + 1,
			NDIV:      it.Score,
			Ratios:    scorer.Ratios(candidate, s.layout.All.Index),
		}
	}
	return out, nil
}

// FindTopCandidates returns up to topN candidates for the gene at row
// targetIndex, ranked by ascending control-range NDIV.
//
// An out-of-range targetIndex fails with matrix.ErrIndexOutOfRange; a column
// range that cannot be resolved fails with matrix.ErrConfiguration.
func FindTopCandidates(m *matrix.Matrix, targetIndex, topN int, cfg matrix.RangeConfig) ([]Candidate, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopN, topN)
	}
	if m == nil {
		return nil, errors.New("selector: nil matrix")
	}
	if _, err := m.GeneID(targetIndex); err != nil {
		return nil, err
	}
	layout, err := m.Layout(cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(m, layout, Options{TopN: topN})
	if err != nil {
		return nil, err
	}
	return s.Find(targetIndex)
}
