// Package engine implements the fuzzy join engine.
//
// A join moves through three states:
//
//	Indexing -> Scanning -> Done
//
// Indexing builds the n-gram blocking index over the right table.
// Scanning walks the left table in order; every left record is collated,
// its candidate right records are read from the index, and each candidate
// pair is compared at most once by the comparison pipeline. Accepted pairs
// become matches in discovery order.
//
// # Parallel Scanning
//
// With Workers > 1 the left table is split into contiguous shards that are
// scanned concurrently. The index and the configuration are read-only, every
// shard keeps its own match list, and shard results are concatenated in
// shard order. No locks are taken in the comparison hot path.
//
// # Cancellation
//
// The context is checked between left records. A cancelled join returns the
// matches found so far together with the context error.
package engine
