package engine

import "github.com/hupe1980/fuzzyjoin/model"

// FilterMultiples returns the matches whose left identifier (read from
// idField) occurs more than once in matches, preserving order. It returns
// an empty set when no left identifier repeats.
func FilterMultiples(idField string, matches model.MatchSet) model.MatchSet {
	counts := make(map[string]int, len(matches))
	for _, m := range matches {
		counts[m.Left.Value(idField)]++
	}

	out := model.MatchSet{}
	for _, m := range matches {
		if counts[m.Left.Value(idField)] > 1 {
			out = append(out, m)
		}
	}
	return out
}
