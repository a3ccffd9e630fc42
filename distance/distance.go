package distance

import (
	"fmt"
	"unicode/utf8"

	edlib "github.com/hbollon/go-edlib"
)

// Func computes a non-negative edit distance with Func(x, x) == 0.
type Func func(a, b string) int

// Metric represents the edit distance used for fuzzy scoring.
type Metric int

const (
	MetricLevenshtein Metric = iota
	MetricOSA
)

func (m Metric) String() string {
	switch m {
	case MetricLevenshtein:
		return "Levenshtein"
	case MetricOSA:
		return "OSA"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricLevenshtein:
		return Levenshtein, nil
	case MetricOSA:
		return OSA, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Len returns the length of s in characters.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Levenshtein returns the minimum number of single-character insertions,
// deletions and substitutions turning a into b.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	return edlib.LevenshteinDistance(a, b)
}

// OSA returns the optimal string alignment distance: Levenshtein extended
// with transpositions of two adjacent characters, where no substring is
// edited more than once.
func OSA(a, b string) int {
	if a == b {
		return 0
	}
	return edlib.OSADamerauLevenshteinDistance(a, b)
}
