// Package matrix provides the read-only expression matrix view used by the
// candidate search.
//
// A Matrix holds one row per gene and one column per sample. Values are stored
// row-major in a gonum dense matrix so a gene's sample vector is available as a
// zero-copy slice.
//
// # Column layout
//
// Samples are addressed through two contiguous, inclusive label ranges:
//
//	m, _ := matrix.FromRows(genes, samples, rows)
//	layout, err := m.Layout(matrix.RangeConfig{
//	    ControlStart: "C1", ControlEnd: "C9",
//	    AllStart:     "C1", AllEnd:     "T9",
//	})
//
// The control range is used for scoring, the all range for reporting. Both must
// start at the same column and the control range must not extend past the all
// range. Violations are reported as *ConfigurationError.
//
// # Thread Safety
//
// A Matrix is immutable after construction and safe for concurrent readers.
// Slices returned by Row alias internal storage and must not be modified.
package matrix
