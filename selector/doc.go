// Package selector ranks candidate index genes for a target gene.
//
// For a target row, every other row is scored by the NDIV of its control-range
// ratio vector (see package dispersion). Rows whose gene identifier equals the
// target's identifier are excluded, the rest are ranked by ascending NDIV and
// the best TopN are materialized with their ratio vector over the full
// sample range.
//
// # Ordering
//
// Ranking is deterministic. Equal scores keep matrix row order, NaN scores
// rank after every number (including +Inf), and -Inf ranks first.
//
// # Degenerate scores
//
// A candidate whose NDIV is NaN or infinite is still returned; use
// Candidate.Degenerate to filter such records after the fact.
//
// # Usage
//
//	top, err := selector.FindTopCandidates(m, 0, 10, matrix.DefaultRangeConfig())
//
// For many targets against the same matrix, reuse a Selector per goroutine:
//
//	sel, _ := selector.New(m, layout, selector.Options{TopN: 10})
//	for i := lo; i < hi; i++ {
//	    top, err := sel.Find(i)
//	}
package selector
