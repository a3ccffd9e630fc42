// Package distance provides edit distances between strings.
//
// Distances count characters (runes), not bytes, so multi-byte input is
// measured the same way as its length.
//
// # Supported Metrics
//
//   - MetricLevenshtein: insertions, deletions and substitutions (default)
//   - MetricOSA: Levenshtein plus transpositions of adjacent characters
//
// # Usage
//
//	d := distance.Levenshtein("hello", "hell") // 1
//	fn, _ := distance.Provider(distance.MetricOSA)
//	d = fn("ab", "ba") // 1
package distance
