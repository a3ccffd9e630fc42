package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"Identical", "string", "string", 0},
		{"Empty", "", "", 0},
		{"EmptyLeft", "", "abc", 3},
		{"EmptyRight", "abc", "", 3},
		{"Deletion", "hello", "hell", 1},
		{"Substitution", "hello", "zzzzz", 5},
		{"Kitten", "kitten", "sitting", 3},
		{"Transposition", "ab", "ba", 2},
		{"Unicode", "müller", "muller", 1},
		{"Demo", "a hello world", "hella", 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a), "symmetry")
		})
	}
}

func TestOSA(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"Identical", "abc", "abc", 0},
		{"Transposition", "ab", "ba", 1},
		{"Kitten", "kitten", "sitting", 3},
		{"CA", "ca", "abc", 3},
		{"EmptyLeft", "", "ab", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OSA(tt.a, tt.b))
		})
	}
}

func TestProvider(t *testing.T) {
	fn, err := Provider(MetricLevenshtein)
	require.NoError(t, err)
	assert.Equal(t, 1, fn("hello", "hell"))

	fn, err = Provider(MetricOSA)
	require.NoError(t, err)
	assert.Equal(t, 1, fn("ab", "ba"))

	_, err = Provider(Metric(42))
	assert.Error(t, err)

	assert.Equal(t, "Levenshtein", MetricLevenshtein.String())
	assert.Equal(t, "Unknown(42)", Metric(42).String())
}

func TestLen(t *testing.T) {
	assert.Equal(t, 6, Len("müller"))
	assert.Equal(t, 0, Len(""))
}
