package compare

import (
	"slices"
	"strings"
)

// Numbers extracts every run of ASCII digits in text as a canonical integer
// string (leading zeros removed), in order of appearance.
func Numbers(text string) []string {
	var nums []string
	start := -1
	for i := 0; i <= len(text); i++ {
		digit := i < len(text) && text[i] >= '0' && text[i] <= '9'
		switch {
		case digit && start < 0:
			start = i
		case !digit && start >= 0:
			nums = append(nums, canonical(text[start:i]))
			start = -1
		}
	}
	return nums
}

func canonical(run string) string {
	n := strings.TrimLeft(run, "0")
	if n == "" {
		return "0"
	}
	return n
}

// NumbersExact reports whether a and b contain the same integers in the
// same order.
func NumbersExact(a, b string) bool {
	return slices.Equal(Numbers(a), Numbers(b))
}

// NumbersPermutation reports whether a and b contain the same multiset of
// integers in any order.
func NumbersPermutation(a, b string) bool {
	na, nb := Numbers(a), Numbers(b)
	if len(na) != len(nb) {
		return false
	}
	slices.Sort(na)
	slices.Sort(nb)
	return slices.Equal(na, nb)
}

// NumbersSubset reports whether the integer set of one side is contained
// in the integer set of the other.
func NumbersSubset(a, b string) bool {
	sa, sb := toSet(Numbers(a)), toSet(Numbers(b))
	return subset(sa, sb) || subset(sb, sa)
}

func toSet(nums []string) map[string]struct{} {
	s := make(map[string]struct{}, len(nums))
	for _, n := range nums {
		s[n] = struct{}{}
	}
	return s
}

func subset(small, large map[string]struct{}) bool {
	if len(small) > len(large) {
		return false
	}
	for n := range small {
		if _, ok := large[n]; !ok {
			return false
		}
	}
	return true
}
