package dispersion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestRatios(t *testing.T) {
	target := []float64{10, 10, 4, 8}
	candidate := []float64{20, 5, 0, 2}

	got := Ratios(nil, target, candidate, []int{0, 1, 3}, Epsilon)
	assert.True(t, floats.EqualApprox([]float64{0.5, 2, 4}, got, 1e-9))

	// zero denominator is guarded by eps only
	z := Ratios(nil, target, candidate, []int{2}, Epsilon)
	assert.InDelta(t, 4/Epsilon, z[0], 1)
	assert.False(t, math.IsInf(z[0], 0))

	// dst is reused when large enough
	dst := make([]float64, 8)
	out := Ratios(dst, target, candidate, []int{0, 1}, Epsilon)
	assert.Len(t, out, 2)
	assert.Same(t, &dst[0], &out[0])
}

func TestNDIV(t *testing.T) {
	tests := []struct {
		name     string
		ratios   []float64
		expected float64
	}{
		{"Constant", []float64{0.5, 0.5, 0.5}, 0},
		{"TwoValues", []float64{1, 3}, math.Sqrt2 / 2},
		{"Spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, math.Sqrt(32.0/7) / 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NDIV(tt.ratios), 1e-12)
		})
	}
}

func TestNDIVDegenerate(t *testing.T) {
	assert.True(t, math.IsNaN(NDIV([]float64{0, 0, 0})), "zero mean")
	assert.True(t, math.IsNaN(NDIV([]float64{1})), "single ratio")
	assert.True(t, math.IsNaN(NDIV(nil)))

	assert.True(t, IsDegenerate(math.NaN()))
	assert.True(t, IsDegenerate(math.Inf(1)))
	assert.True(t, IsDegenerate(math.Inf(-1)))
	assert.False(t, IsDegenerate(0))
	assert.False(t, IsDegenerate(1e300))
}

func TestCompute(t *testing.T) {
	target := []float64{10, 10}
	cols := []int{0, 1}

	tests := []struct {
		name      string
		candidate []float64
		ratios    []float64
		check     func(t *testing.T, ndiv float64)
	}{
		{"Proportional", []float64{20, 20}, []float64{0.5, 0.5}, func(t *testing.T, ndiv float64) {
			assert.Equal(t, 0.0, ndiv)
		}},
		{"NearlyProportional", []float64{9.9, 10.1}, []float64{10 / 9.9, 10 / 10.1}, func(t *testing.T, ndiv float64) {
			assert.Greater(t, ndiv, 0.0)
			assert.Less(t, ndiv, 0.02)
		}},
		{"Unstable", []float64{5, 15}, []float64{2, 10.0 / 15}, func(t *testing.T, ndiv float64) {
			assert.Greater(t, ndiv, 0.5)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratios, ndiv, err := Compute(target, tt.candidate, cols)
			require.NoError(t, err)
			assert.True(t, floats.EqualApprox(tt.ratios, ratios, 1e-9))
			tt.check(t, ndiv)
		})
	}

	_, _, err := Compute(target, []float64{1}, cols)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestComputeZeroRows(t *testing.T) {
	// zero target against zero candidate: 0/eps ratios, zero mean
	_, ndiv, err := Compute([]float64{0, 0}, []float64{0, 0}, []int{0, 1})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ndiv))

	// non-zero constant target against zero candidate stays finite
	_, ndiv, err = Compute([]float64{3, 3}, []float64{0, 0}, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, ndiv)
}

func TestScorer(t *testing.T) {
	target := []float64{10, 10, 1, 2}
	control := []int{0, 1}
	s := NewScorer(target, control, 0)
	assert.Equal(t, Epsilon, s.Epsilon())

	candidates := [][]float64{{20, 20, 1, 1}, {9.9, 10.1, 1, 1}, {5, 15, 1, 1}}
	for _, c := range candidates {
		r, want, err := Compute(target, c, control)
		require.NoError(t, err)
		assert.Equal(t, want, s.Score(c))
		assert.Equal(t, r, s.Ratios(c, control))
	}

	full := s.Ratios(candidates[0], []int{0, 1, 2, 3})
	assert.True(t, floats.EqualApprox([]float64{0.5, 0.5, 1, 2}, full, 1e-9))

	custom := NewScorer(target, control, 1e-6)
	assert.Equal(t, 1e-6, custom.Epsilon())
}

func BenchmarkScorer(b *testing.B) {
	const n = 18
	target := make([]float64, n)
	candidate := make([]float64, n)
	control := make([]int, 9)
	for i := range target {
		target[i] = float64(i + 1)
		candidate[i] = float64(2*i + 3)
	}
	for i := range control {
		control[i] = i
	}
	s := NewScorer(target, control, Epsilon)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Score(candidate)
	}
}
