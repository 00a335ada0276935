package dispersion

// Scorer computes NDIV scores for one target row against many candidates.
// It owns a scratch ratio buffer, so steady-state scoring does not allocate.
//
// Scorer is NOT thread-safe. Use one per goroutine.
type Scorer struct {
	target  []float64
	control []int
	eps     float64
	scratch []float64
}

// NewScorer creates a Scorer for target over the control columns.
// eps <= 0 selects Epsilon.
func NewScorer(target []float64, control []int, eps float64) *Scorer {
	if eps <= 0 {
		eps = Epsilon
	}
	return &Scorer{
		target:  target,
		control: control,
		eps:     eps,
		scratch: make([]float64, len(control)),
	}
}

// Score returns the NDIV of the target against candidate.
func (s *Scorer) Score(candidate []float64) float64 {
	s.scratch = Ratios(s.scratch, s.target, candidate, s.control, s.eps)
	return NDIV(s.scratch)
}

// Ratios returns a freshly allocated ratio vector of the target against
// candidate over cols, using the Scorer's eps.
func (s *Scorer) Ratios(candidate []float64, cols []int) []float64 {
	return Ratios(nil, s.target, candidate, cols, s.eps)
}

// Epsilon returns the denominator guard in use.
func (s *Scorer) Epsilon() float64 { return s.eps }
