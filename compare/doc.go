// Package compare implements the multi-stage comparison pipeline.
//
// Stages run from cheapest to most expensive and the pipeline stops at the
// first stage that rejects a pair:
//
//  1. raw-equal: identical raw values match with score 1.0
//  2. collated-equal: identical collated values match with score 1.0
//  3. numbers-exact: same integers in the same order (if enabled)
//  4. numbers-permutation: same multiset of integers (if enabled)
//  5. numbers-subset: one integer set contains the other (if enabled)
//  6. fuzzy: normalized edit-distance similarity >= threshold
//
// Disabled numeric stages pass without doing any work. Every stage returns
// a model.StageResult and the full trace is kept with each match.
package compare
