package dispersion

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Epsilon is the default constant added to ratio denominators.
const Epsilon = 1e-12

// ErrLengthMismatch is returned when target and candidate rows differ in length.
var ErrLengthMismatch = errors.New("dispersion: row length mismatch")

// Ratio returns t / (c + eps).
func Ratio(t, c, eps float64) float64 {
	return t / (c + eps)
}

// Ratios writes target[j]/(candidate[j]+eps) for every j in cols into dst and
// returns dst[:len(cols)]. dst is grown if it is too small.
// Assumes every index in cols is valid for both rows (caller's responsibility).
func Ratios(dst, target, candidate []float64, cols []int, eps float64) []float64 {
	if cap(dst) < len(cols) {
		dst = make([]float64, len(cols))
	}
	dst = dst[:len(cols)]
	for i, j := range cols {
		dst[i] = target[j] / (candidate[j] + eps)
	}
	return dst
}

// NDIV returns the sample standard deviation of ratios divided by their mean.
//
// The result is NaN for fewer than two ratios and NaN or ±Inf when the mean
// is zero.
func NDIV(ratios []float64) float64 {
	if len(ratios) < 2 {
		return math.NaN()
	}
	mean, std := stat.MeanStdDev(ratios, nil)
	return std / mean
}

// Compute returns the ratio vector of target against candidate over cols and
// its NDIV, using the default Epsilon.
func Compute(target, candidate []float64, cols []int) ([]float64, float64, error) {
	if len(target) != len(candidate) {
		return nil, math.NaN(), ErrLengthMismatch
	}
	r := Ratios(nil, target, candidate, cols, Epsilon)
	return r, NDIV(r), nil
}

// IsDegenerate reports whether an NDIV score is NaN or infinite.
func IsDegenerate(ndiv float64) bool {
	return math.IsNaN(ndiv) || math.IsInf(ndiv, 0)
}
