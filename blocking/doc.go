// Package blocking implements the n-gram blocking index used to prune the
// comparison space of a join.
//
// The index is built once over the right table. Each distinct identifier is
// assigned a dense slot and every n-gram of the collated comparison field
// maps to a Roaring bitmap of slots. A left record is only compared with the
// right records it shares at least one n-gram with:
//
//	idx, _ := blocking.Build(right, "name", "id", func(o *blocking.Options) {
//	    o.NGramSize = 3
//	})
//	for slot := range idx.Candidates(collate.Default("Jon Smith")) {
//	    fmt.Println(idx.ID(slot))
//	}
//
// Pairs sharing no n-gram are never compared. Larger n-gram sizes shrink
// blocks but miss matches whose collated forms differ in every window.
package blocking
