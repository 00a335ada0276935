package selector

import "github.com/hupe1980/dirt/dispersion"

// Candidate is one ranked (target, candidate) gene pair.
type Candidate struct {
	Target    string    // target gene identifier
	Gene      string    // candidate gene identifier
	TargetRow int       // matrix row of the target
	Row       int       // matrix row of the candidate
	Rank      int       // 1-based position within the target's result
	NDIV      float64   // control-range normalized dispersion
	Ratios    []float64 // target/candidate ratios over the all range
}

// ID returns the "target/candidate" pair identifier.
func (c Candidate) ID() string {
	return c.Target + "/" + c.Gene
}

// Degenerate reports whether the NDIV score is NaN or infinite.
func (c Candidate) Degenerate() bool {
	return dispersion.IsDegenerate(c.NDIV)
}

// CountDegenerate returns the number of candidates with a non-finite score.
func CountDegenerate(cs []Candidate) int {
	n := 0
	for i := range cs {
		if cs[i].Degenerate() {
			n++
		}
	}
	return n
}
