package matrix

import "slices"

// Columns is a contiguous, ordered run of sample columns.
type Columns struct {
	Names []string // sample identifiers, left to right
	Index []int    // column positions in the matrix, ascending and consecutive
}

// Len returns the number of columns in the run.
func (c Columns) Len() int { return len(c.Index) }

// RangeConfig names the inclusive label bounds of the control and all ranges.
type RangeConfig struct {
	ControlStart string
	ControlEnd   string
	AllStart     string
	AllEnd       string
}

// DefaultRangeConfig returns the C1..C9 control / C1..T9 all layout of an
// 18-sample experiment with nine controls followed by nine treated samples.
func DefaultRangeConfig() RangeConfig {
	return RangeConfig{
		ControlStart: "C1",
		ControlEnd:   "C9",
		AllStart:     "C1",
		AllEnd:       "T9",
	}
}

// Layout is a resolved RangeConfig.
type Layout struct {
	Control Columns
	All     Columns
}

// Range resolves the inclusive label range start..end.
//
// Both labels must exist and start must not come after end.
func (m *Matrix) Range(start, end string) (Columns, error) {
	if start == "" || end == "" {
		return Columns{}, &ConfigurationError{Start: start, End: end, Reason: "missing range label"}
	}
	lo, ok := m.columns[start]
	if !ok {
		return Columns{}, &ConfigurationError{Start: start, End: end, Reason: "start label not found"}
	}
	hi, ok := m.columns[end]
	if !ok {
		return Columns{}, &ConfigurationError{Start: start, End: end, Reason: "end label not found"}
	}
	if lo > hi {
		return Columns{}, &ConfigurationError{Start: start, End: end, Reason: "start label comes after end label"}
	}

	cols := Columns{
		Names: slices.Clone(m.samples[lo : hi+1]),
		Index: make([]int, 0, hi-lo+1),
	}
	for j := lo; j <= hi; j++ {
		cols.Index = append(cols.Index, j)
	}
	return cols, nil
}

// Layout resolves cfg into control and all column runs.
//
// The control range needs at least two samples (the dispersion uses n-1
// degrees of freedom), must start at the same column as the all range and
// must end inside it.
func (m *Matrix) Layout(cfg RangeConfig) (Layout, error) {
	control, err := m.Range(cfg.ControlStart, cfg.ControlEnd)
	if err != nil {
		return Layout{}, err
	}
	all, err := m.Range(cfg.AllStart, cfg.AllEnd)
	if err != nil {
		return Layout{}, err
	}

	if control.Len() < 2 {
		return Layout{}, &ConfigurationError{Start: cfg.ControlStart, End: cfg.ControlEnd, Reason: "control range needs at least two samples"}
	}
	if control.Index[0] != all.Index[0] {
		return Layout{}, &ConfigurationError{Start: cfg.ControlStart, End: cfg.AllStart, Reason: "control and all ranges must start at the same column"}
	}
	if control.Len() > all.Len() {
		return Layout{}, &ConfigurationError{Start: cfg.ControlEnd, End: cfg.AllEnd, Reason: "control range extends past all range"}
	}

	return Layout{Control: control, All: all}, nil
}
