package compare

import (
	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/distance"
)

// Score returns 1 - d(a, b)/longer, where longer is the length of the
// longer string in characters. A distance of at least longer scores 0.
// Two empty strings score 1. A negative distance counts as 0.
func Score(d distance.Func, a, b string) float64 {
	if a == b {
		return 1.0
	}
	longer := max(distance.Len(a), distance.Len(b))
	delta := max(d(a, b), 0)
	if delta >= longer {
		return 0.0
	}
	return 1 - float64(delta)/float64(longer)
}

// Similarity collates a and b with c and scores them with d.
func Similarity(a, b string, c collate.Func, d distance.Func) float64 {
	return Score(d, c(a), c(b))
}
