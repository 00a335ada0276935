// Package dispersion computes expression ratios between two genes and the
// normalized dispersion (NDIV) of those ratios.
//
// NDIV is the sample standard deviation (n-1 degrees of freedom) of a ratio
// vector divided by its arithmetic mean. A small EPS is added to every ratio
// denominator so a zero candidate value never divides by exact zero. The NDIV
// denominator is not guarded: a ratio vector with zero mean yields NaN, which
// callers are expected to surface rather than hide.
package dispersion
