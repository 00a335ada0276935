// Package testutil provides testing utilities for dirt.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random expression matrices and for
// computing exact candidate rankings by brute force.
//
// # Random Matrices
//
//	rng := testutil.NewRNG(seed)
//	m := rng.ExpressionMatrix(100, 9, 9) // 100 genes, C1..C9, T1..T9
//
// # Exact Ranking (Ground Truth)
//
//	want := testutil.ExactTopN(m, target, layout, 10)
package testutil
