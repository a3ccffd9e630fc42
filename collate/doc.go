// Package collate normalizes text into a canonical comparable form and
// splits it into tokens and n-grams.
//
// Collation runs before blocking and before every comparison. The default
// collator removes punctuation and sorts tokens so that "Smith, John" and
// "John Smith" collate to the same string:
//
//	collate.Default("Smith, John") // "John Smith"
//
// N-grams are produced lazily:
//
//	for g := range collate.NGrams("hello world", 3) {
//	    fmt.Println(g) // hel ell llo wor orl rld
//	}
package collate
