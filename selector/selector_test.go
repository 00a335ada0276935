package selector

import (
	"math"
	"testing"

	"github.com/hupe1980/dirt/dispersion"
	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var twoControls = matrix.RangeConfig{ControlStart: "C1", ControlEnd: "C2", AllStart: "C1", AllEnd: "C2"}

func scenarioMatrix(t *testing.T) *matrix.Matrix {
	t.Helper()
	m, err := matrix.FromRows(
		[]string{"G1", "G2", "G3", "G4"},
		[]string{"C1", "C2"},
		[][]float64{{10, 10}, {20, 20}, {5, 15}, {9.9, 10.1}},
	)
	require.NoError(t, err)
	return m
}

func TestFindTopCandidatesScenario(t *testing.T) {
	m := scenarioMatrix(t)

	top, err := FindTopCandidates(m, 0, 2, twoControls)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "G1/G2", top[0].ID())
	assert.Equal(t, 0.0, top[0].NDIV)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, top[0].Ratios, 1e-9)
	assert.Equal(t, 1, top[0].Rank)

	assert.Equal(t, "G1/G4", top[1].ID())
	assert.Greater(t, top[1].NDIV, 0.0)
	assert.Less(t, top[1].NDIV, 0.05)
	assert.InDeltaSlice(t, []float64{1.0101, 0.9901}, top[1].Ratios, 1e-4)
	assert.Equal(t, 2, top[1].Rank)

	for _, c := range top {
		assert.Equal(t, "G1", c.Target)
		assert.Equal(t, 0, c.TargetRow)
		assert.NotEqual(t, "G3", c.Gene)
	}
}

func TestFindTopCandidatesTopNExceedsCandidates(t *testing.T) {
	m := scenarioMatrix(t)

	top, err := FindTopCandidates(m, 2, 10, twoControls)
	require.NoError(t, err)
	assert.Len(t, top, 3)
}

func TestFindTopCandidatesErrors(t *testing.T) {
	m := scenarioMatrix(t)

	_, err := FindTopCandidates(m, 4, 2, twoControls)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfRange)

	_, err = FindTopCandidates(m, -1, 2, twoControls)
	assert.ErrorIs(t, err, matrix.ErrIndexOutOfRange)

	_, err = FindTopCandidates(m, 0, 2, matrix.RangeConfig{ControlStart: "C2", ControlEnd: "C1", AllStart: "C1", AllEnd: "C2"})
	assert.ErrorIs(t, err, matrix.ErrConfiguration)

	_, err = FindTopCandidates(m, 0, 2, matrix.DefaultRangeConfig())
	assert.ErrorIs(t, err, matrix.ErrConfiguration)

	_, err = FindTopCandidates(m, 0, 0, twoControls)
	assert.ErrorIs(t, err, ErrInvalidTopN)

	_, err = FindTopCandidates(nil, 0, 1, twoControls)
	assert.Error(t, err)
}

func TestNewErrors(t *testing.T) {
	m := scenarioMatrix(t)

	_, err := New(m, matrix.Layout{}, Options{})
	assert.ErrorIs(t, err, matrix.ErrConfiguration)

	layout, err := m.Layout(twoControls)
	require.NoError(t, err)

	_, err = New(m, layout, Options{TopN: -3})
	assert.ErrorIs(t, err, ErrInvalidTopN)

	s, err := New(m, layout, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopN, s.TopN())
	assert.Equal(t, layout, s.Layout())
}

func TestDegenerateScoresAreEmitted(t *testing.T) {
	m, err := matrix.FromRows(
		[]string{"Z", "A", "B", "ZERO"},
		[]string{"C1", "C2", "T1"},
		[][]float64{{0, 0, 1}, {1, 2, 3}, {4, 8, 4}, {0, 0, 0}},
	)
	require.NoError(t, err)
	cfg := matrix.RangeConfig{ControlStart: "C1", ControlEnd: "C2", AllStart: "C1", AllEnd: "T1"}

	top, err := FindTopCandidates(m, 0, 10, cfg)
	require.NoError(t, err)
	require.Len(t, top, 3)
	for _, c := range top {
		assert.True(t, math.IsNaN(c.NDIV), c.ID())
		assert.True(t, c.Degenerate())
	}
	// all NaN: matrix order is kept
	assert.Equal(t, []string{"A", "B", "ZERO"}, []string{top[0].Gene, top[1].Gene, top[2].Gene})
	assert.Equal(t, 3, CountDegenerate(top))

	// zero candidates against a non-zero target give large but finite ratios
	top, err = FindTopCandidates(m, 1, 10, cfg)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"B", "Z", "ZERO"}, []string{top[0].Gene, top[1].Gene, top[2].Gene})
	assert.Equal(t, 0, CountDegenerate(top))
}

func TestNaNSortsLast(t *testing.T) {
	huge := math.Ldexp(1, 1020)
	m, err := matrix.FromRows(
		[]string{"T", "Z", "A", "Y", "B"},
		[]string{"C1", "C2"},
		[][]float64{{huge, huge}, {0, 0}, {1 << 20, 1 << 22}, {0, 0}, {1 << 20, 1 << 20}},
	)
	require.NoError(t, err)

	// against T: B is proportional; A gives the exact ratios 2^1000 and
	// 2^998 whose squared deviations overflow the variance to +Inf; the
	// all-zero Z and Y overflow the ratios themselves, giving NaN, and keep
	// row order among themselves
	top, err := FindTopCandidates(m, 0, 4, twoControls)
	require.NoError(t, err)
	require.Len(t, top, 4)
	assert.Equal(t, []string{"B", "A", "Z", "Y"}, []string{top[0].Gene, top[1].Gene, top[2].Gene, top[3].Gene})
	assert.Equal(t, 0.0, top[0].NDIV)
	assert.True(t, math.IsInf(top[1].NDIV, 1))
	assert.True(t, math.IsNaN(top[2].NDIV))
	assert.True(t, math.IsInf(top[2].Ratios[0], 1))
	assert.True(t, math.IsNaN(top[3].NDIV))
	assert.Equal(t, 3, CountDegenerate(top))

	top, err = FindTopCandidates(m, 0, 2, twoControls)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, []string{top[0].Gene, top[1].Gene})
	assert.Equal(t, 1, CountDegenerate(top))
}

func TestSelfExclusionByIdentifier(t *testing.T) {
	m, err := matrix.FromRows(
		[]string{"G1", "X/G1", "G11", "G1", "G2"},
		[]string{"C1", "C2"},
		[][]float64{{1, 2}, {1, 2}, {2, 4}, {1, 2}, {5, 1}},
	)
	require.NoError(t, err)

	top, err := FindTopCandidates(m, 0, 10, twoControls)
	require.NoError(t, err)

	genes := make([]string, len(top))
	for i, c := range top {
		genes[i] = c.Gene
	}
	// both rows named G1 are excluded; identifiers that merely end in G1 are not
	assert.ElementsMatch(t, []string{"X/G1", "G11", "G2"}, genes)
	assert.Len(t, top, 3)
}

func TestTiesKeepMatrixOrder(t *testing.T) {
	m, err := matrix.FromRows(
		[]string{"T", "D", "C", "B", "A"},
		[]string{"C1", "C2"},
		[][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}},
	)
	require.NoError(t, err)

	top, err := FindTopCandidates(m, 0, 3, twoControls)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{top[0].Row, top[1].Row, top[2].Row})
}

func TestSelectorProperties(t *testing.T) {
	const (
		genes    = 60
		controls = 5
		treated  = 4
		topN     = 7
	)
	rng := testutil.NewRNG(99)
	m := rng.ExpressionMatrix(genes, controls, treated)
	layout, err := m.Layout(testutil.RangeConfig(controls, treated))
	require.NoError(t, err)

	s, err := New(m, layout, Options{TopN: topN})
	require.NoError(t, err)

	for target := 0; target < genes; target++ {
		top, err := s.Find(target)
		require.NoError(t, err)
		targetRow, _ := m.Row(target)
		targetID, _ := m.GeneID(target)

		// count bound
		require.Len(t, top, min(topN, genes-1))

		for i, c := range top {
			// self-exclusion
			assert.NotEqual(t, targetID, c.Gene)
			// ascending order
			if i > 0 {
				assert.LessOrEqual(t, top[i-1].NDIV, c.NDIV)
			}
			// ratio correctness over the all range
			candRow, _ := m.Row(c.Row)
			require.Len(t, c.Ratios, layout.All.Len())
			for k, j := range layout.All.Index {
				assert.InEpsilon(t, targetRow[j]/candRow[j], c.Ratios[k], 1e-9)
			}
			// NDIV reproducible from the reported control ratios
			assert.InDelta(t, c.NDIV, dispersion.NDIV(c.Ratios[:layout.Control.Len()]), 1e-12)
		}

		// agrees with a brute-force stable sort
		want := testutil.ExactTopN(m, target, layout, topN)
		for i := range want {
			assert.Equal(t, want[i].Row, top[i].Row)
		}
	}
}

func TestDeterminism(t *testing.T) {
	rng := testutil.NewRNG(5)
	m := rng.ExpressionMatrix(40, 3, 3)
	cfg := testutil.RangeConfig(3, 3)

	for target := 0; target < 5; target++ {
		a, err := FindTopCandidates(m, target, 8, cfg)
		require.NoError(t, err)
		b, err := FindTopCandidates(m, target, 8, cfg)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func BenchmarkFind(b *testing.B) {
	rng := testutil.NewRNG(1)
	m := rng.ExpressionMatrix(2000, 9, 9)
	layout, err := m.Layout(testutil.RangeConfig(9, 9))
	require.NoError(b, err)
	s, err := New(m, layout, Options{TopN: 10})
	require.NoError(b, err)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Find(i % m.Rows())
	}
}
