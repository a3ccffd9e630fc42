package collate

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Func normalizes text. Implementations must be pure and deterministic and
// must map "" to "".
type Func func(text string) string

// Default replaces every character that is not an ASCII letter, digit or
// space with a space, then sorts the remaining tokens and joins them with
// single spaces.
func Default(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isKept(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	tokens := Tokens(b.String())
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

func isKept(r rune) bool {
	return r == ' ' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// Identity returns text unchanged.
func Identity(text string) string { return text }

// Lower lower-cases text before applying Default.
func Lower(text string) string {
	return Default(strings.ToLower(text))
}

// Fold strips diacritics (NFKD decomposition without combining marks),
// lower-cases and then applies Default, so "Müller" and "muller" collate
// equally.
func Fold(text string) string {
	if text == "" {
		return ""
	}
	// Transformers keep state, so the chain is built per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return Default(strings.ToLower(folded))
}
