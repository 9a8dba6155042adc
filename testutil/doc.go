// Package testutil provides testing utilities for Vecdex.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating seeded random vectors, sequential
// identifiers, and computing search recall.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 128)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(exactResults, approxResults)
package testutil
