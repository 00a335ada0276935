package matrix

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a gene-by-sample expression table.
type Matrix struct {
	genes   []string
	samples []string
	columns map[string]int // sample id -> column index
	data    *mat.Dense
}

// New creates a Matrix from row-major values.
// len(values) must equal len(genes)*len(samples).
//
// Values must be finite and non-negative. Gene identifiers may repeat;
// sample identifiers may not.
func New(genes, samples []string, values []float64) (*Matrix, error) {
	r, c := len(genes), len(samples)
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("%w: %d genes x %d samples", ErrShape, r, c)
	}
	if len(values) != r*c {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrShape, r*c, len(values))
	}

	columns := make(map[string]int, c)
	for j, s := range samples {
		if _, dup := columns[s]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSample, s)
		}
		columns[s] = j
	}

	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: gene %q sample %q", ErrNonFinite, genes[k/c], samples[k%c])
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: gene %q sample %q = %g", ErrNegativeValue, genes[k/c], samples[k%c], v)
		}
	}

	return &Matrix{
		genes:   slices.Clone(genes),
		samples: slices.Clone(samples),
		columns: columns,
		data:    mat.NewDense(r, c, slices.Clone(values)),
	}, nil
}

// FromRows creates a Matrix from one value slice per gene.
func FromRows(genes, samples []string, rows [][]float64) (*Matrix, error) {
	if len(rows) != len(genes) {
		return nil, fmt.Errorf("%w: %d genes but %d rows", ErrShape, len(genes), len(rows))
	}
	values := make([]float64, 0, len(genes)*len(samples))
	for i, row := range rows {
		if len(row) != len(samples) {
			return nil, fmt.Errorf("%w: row %d (%q) has %d values, want %d", ErrShape, i, genes[i], len(row), len(samples))
		}
		values = append(values, row...)
	}
	return New(genes, samples, values)
}

// Rows returns the number of genes.
func (m *Matrix) Rows() int { return len(m.genes) }

// Cols returns the number of samples.
func (m *Matrix) Cols() int { return len(m.samples) }

// Genes returns a copy of the gene identifiers in row order.
func (m *Matrix) Genes() []string { return slices.Clone(m.genes) }

// Samples returns a copy of the sample identifiers in column order.
func (m *Matrix) Samples() []string { return slices.Clone(m.samples) }

// GeneID returns the identifier of row i.
func (m *Matrix) GeneID(i int) (string, error) {
	if err := m.checkRow(i); err != nil {
		return "", err
	}
	return m.genes[i], nil
}

// Row returns the sample values of row i.
// The slice aliases the matrix storage and must be treated as read-only.
func (m *Matrix) Row(i int) ([]float64, error) {
	if err := m.checkRow(i); err != nil {
		return nil, err
	}
	return m.data.RawRowView(i), nil
}

// RowByID returns the values and index of the first row carrying id.
func (m *Matrix) RowByID(id string) ([]float64, int, error) {
	i := slices.Index(m.genes, id)
	if i < 0 {
		return nil, -1, fmt.Errorf("%w: %q", ErrUnknownGene, id)
	}
	return m.data.RawRowView(i), i, nil
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) (float64, error) {
	if err := m.checkRow(i); err != nil {
		return 0, err
	}
	if j < 0 || j >= len(m.samples) {
		return 0, fmt.Errorf("%w: column %d out of range [0,%d)", ErrShape, j, len(m.samples))
	}
	return m.data.At(i, j), nil
}

// Dense exposes the backing matrix for read-only numeric use.
func (m *Matrix) Dense() mat.Matrix { return m.data }

func (m *Matrix) checkRow(i int) error {
	if i < 0 || i >= len(m.genes) {
		return &IndexError{Index: i, Rows: len(m.genes)}
	}
	return nil
}
