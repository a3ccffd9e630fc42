// Package testutil provides testing utilities for fuzzyjoin.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random tables with near-duplicate
// values, computing the exact (unblocked) join, and measuring the recall of
// a blocked join against it.
//
// # Random Tables
//
//	rng := testutil.NewRNG(seed)
//	left := rng.Table("left", 100)
//	right := rng.Variants("right", left, 0.2) // one typo per value with p=0.2
//
// # Exact Join (Ground Truth)
//
//	exact, err := testutil.ExactJoin(left, right, cfg)
//
// # Recall Verification
//
//	recall := testutil.Recall(res.Matches.Keys("id", "id"), exact.Keys("id", "id"))
package testutil
