package engine

import (
	"time"

	"github.com/hupe1980/fuzzyjoin/blocking"
)

// Stats summarizes a join.
type Stats struct {
	LeftRecords  int
	RightRecords int

	// Candidates counts distinct candidate pairs produced by the index.
	Candidates int64
	// Excluded counts candidate pairs skipped by the exclusion predicate.
	Excluded int64
	// Comparisons counts pipeline runs.
	Comparisons int64
	Matches     int64

	Shards        int
	Index         blocking.Stats
	IndexDuration time.Duration
	ScanDuration  time.Duration
}

func (s *Stats) add(o Stats) {
	s.Candidates += o.Candidates
	s.Excluded += o.Excluded
	s.Comparisons += o.Comparisons
	s.Matches += o.Matches
}
