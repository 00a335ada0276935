package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/dirt/dispersion"
	"github.com/hupe1980/dirt/matrix"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*(maxVal-minVal)
	}
}

// SampleNames returns C1..Cc followed by T1..Tt.
func SampleNames(controls, treated int) []string {
	names := make([]string, 0, controls+treated)
	for i := 1; i <= controls; i++ {
		names = append(names, fmt.Sprintf("C%d", i))
	}
	for i := 1; i <= treated; i++ {
		names = append(names, fmt.Sprintf("T%d", i))
	}
	return names
}

// GeneNames returns G1..Gn.
func GeneNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("G%d", i+1)
	}
	return names
}

// ExpressionRows generates CPM-like log-normal rows. Each gene has its own
// base level; roughly one gene in ten is a scaled copy of an earlier gene so
// rankings contain near-zero scores.
func (r *RNG) ExpressionRows(genes, samples int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([][]float64, genes)
	for i := range rows {
		row := make([]float64, samples)
		if i > 0 && r.rand.Intn(10) == 0 {
			src := rows[r.rand.Intn(i)]
			scale := 0.5 + r.rand.Float64()*4
			for j := range row {
				row[j] = src[j] * scale
			}
		} else {
			base := math.Exp(r.rand.NormFloat64()*2 + 3)
			for j := range row {
				row[j] = base * math.Exp(r.rand.NormFloat64()*0.3)
			}
		}
		rows[i] = row
	}
	return rows
}

// ExpressionMatrix builds a matrix with genes G1..Gn and samples C1..Cc, T1..Tt.
// It panics on construction errors, which indicate a bug in the generator.
func (r *RNG) ExpressionMatrix(genes, controls, treated int) *matrix.Matrix {
	m, err := matrix.FromRows(GeneNames(genes), SampleNames(controls, treated), r.ExpressionRows(genes, controls+treated))
	if err != nil {
		panic(err)
	}
	return m
}

// RangeConfig returns the C1..Cc control and C1..Tt all range.
func RangeConfig(controls, treated int) matrix.RangeConfig {
	end := fmt.Sprintf("C%d", controls)
	if treated > 0 {
		end = fmt.Sprintf("T%d", treated)
	}
	return matrix.RangeConfig{
		ControlStart: "C1",
		ControlEnd:   fmt.Sprintf("C%d", controls),
		AllStart:     "C1",
		AllEnd:       end,
	}
}

// Ranked is a brute-force ranking entry.
type Ranked struct {
	Row  int
	NDIV float64
}

// ExactTopN ranks every non-self row of m against target with a full stable
// sort (NaN last) and returns the first n entries.
func ExactTopN(m *matrix.Matrix, target int, layout matrix.Layout, n int) []Ranked {
	genes := m.Genes()
	t, err := m.Row(target)
	if err != nil {
		panic(err)
	}

	var all []Ranked
	for i := range genes {
		if genes[i] == genes[target] {
			continue
		}
		c, _ := m.Row(i)
		_, ndiv, _ := dispersion.Compute(t, c, layout.Control.Index)
		all = append(all, Ranked{Row: i, NDIV: ndiv})
	}

	slices.SortStableFunc(all, func(a, b Ranked) int {
		an, bn := math.IsNaN(a.NDIV), math.IsNaN(b.NDIV)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		case a.NDIV < b.NDIV:
			return -1
		case a.NDIV > b.NDIV:
			return 1
		}
		return 0
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}
