package collate

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Tokens splits text on whitespace, discarding empty tokens.
func Tokens(text string) []string {
	return strings.Fields(text)
}

// TokenNGrams yields every contiguous substring of exactly size characters
// of token, advancing one character at a time.
//
// Tokens shorter than size yield nothing, which makes them invisible to
// blocking.
func TokenNGrams(token string, size int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if size < 1 {
			return
		}
		if isASCII(token) {
			for i := 0; i+size <= len(token); i++ {
				if !yield(token[i : i+size]) {
					return
				}
			}
			return
		}
		offs := runeOffsets(token)
		for i := 0; i+size < len(offs); i++ {
			if !yield(token[offs[i]:offs[i+size]]) {
				return
			}
		}
	}
}

// NGrams yields the n-grams of every token of text, in token order and then
// position order.
func NGrams(text string, size int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, tok := range Tokens(text) {
			for g := range TokenNGrams(tok, size) {
				if !yield(g) {
					return
				}
			}
		}
	}
}

// runeOffsets returns the byte offset of every rune start plus len(s).
func runeOffsets(s string) []int {
	offs := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offs = append(offs, i)
	}
	return append(offs, len(s))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
