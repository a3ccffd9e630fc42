package blocking

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/model"
)

// Options configures index construction.
type Options struct {
	// NGramSize is the n-gram length (>= 1).
	NGramSize int
	// Collate normalizes the field before n-gram extraction.
	Collate collate.Func
	// StrictIDs rejects duplicate identifiers with a DuplicateIDError.
	StrictIDs bool
}

// DefaultOptions are the index defaults.
var DefaultOptions = Options{
	NGramSize: 3,
	Collate:   collate.Default,
}

// empty is returned for absent n-grams. It must never be modified.
var empty = roaring.New()

// Index maps n-grams to the slots of the right records containing them.
// It is immutable after Build and safe for concurrent readers.
type Index struct {
	size  int
	grams map[string]*roaring.Bitmap

	ids      []string
	records  []model.Record
	collated []string
	slots    map[string]uint32
	postings uint64
}

// Build indexes tbl by the n-grams of field, identifying records by idField.
//
// Duplicate identifiers share one slot whose record is the last one seen,
// unless StrictIDs is set.
func Build(tbl model.Table, field, idField string, optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.NGramSize < 1 {
		return nil, &model.ConfigError{Field: "ngram size", Reason: "must be at least 1"}
	}
	if opts.Collate == nil {
		opts.Collate = collate.Default
	}

	idx := &Index{
		size:  opts.NGramSize,
		grams: make(map[string]*roaring.Bitmap),
		slots: make(map[string]uint32, len(tbl.Records)),
	}
	firstRow := make(map[string]int, len(tbl.Records))

	for row, rec := range tbl.Records {
		id, ok := rec.Get(idField)
		if !ok {
			return nil, &model.SchemaError{Table: tbl.Name, Row: row, Field: idField}
		}
		text, ok := rec.Get(field)
		if !ok {
			return nil, &model.SchemaError{Table: tbl.Name, Row: row, ID: id, Field: field}
		}

		collated := opts.Collate(text)
		slot, seen := idx.slots[id]
		if seen {
			if opts.StrictIDs {
				return nil, &model.DuplicateIDError{Table: tbl.Name, ID: id, Rows: [2]int{firstRow[id], row}}
			}
			idx.records[slot] = rec
			idx.collated[slot] = collated
		} else {
			slot = uint32(len(idx.ids))
			idx.slots[id] = slot
			firstRow[id] = row
			idx.ids = append(idx.ids, id)
			idx.records = append(idx.records, rec)
			idx.collated = append(idx.collated, collated)
		}

		for g := range collate.NGrams(collated, idx.size) {
			bm, ok := idx.grams[g]
			if !ok {
				bm = roaring.New()
				idx.grams[g] = bm
			}
			if bm.CheckedAdd(slot) {
				idx.postings++
			}
		}
	}

	for _, bm := range idx.grams {
		bm.RunOptimize()
	}
	return idx, nil
}

// NGramSize returns the n-gram size the index was built with.
func (idx *Index) NGramSize() int { return idx.size }

// Len returns the number of distinct identifiers.
func (idx *Index) Len() int { return len(idx.ids) }

// ID returns the identifier of slot.
func (idx *Index) ID(slot uint32) string { return idx.ids[slot] }

// Record returns the record of slot.
func (idx *Index) Record(slot uint32) model.Record { return idx.records[slot] }

// Collated returns the collated comparison field of slot.
func (idx *Index) Collated(slot uint32) string { return idx.collated[slot] }

// Slot returns the slot of identifier id.
func (idx *Index) Slot(id string) (uint32, bool) {
	s, ok := idx.slots[id]
	return s, ok
}

// Lookup returns the slots containing ngram. An absent n-gram yields an
// empty bitmap. The result is shared and must not be modified.
func (idx *Index) Lookup(ngram string) *roaring.Bitmap {
	if bm, ok := idx.grams[ngram]; ok {
		return bm
	}
	return empty
}

// Candidates yields the slots sharing an n-gram with the collated text,
// in n-gram order and then ascending slot order. A slot reachable through
// several n-grams is yielded once per n-gram.
func (idx *Index) Candidates(collated string) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for g := range collate.NGrams(collated, idx.size) {
			bm, ok := idx.grams[g]
			if !ok {
				continue
			}
			it := bm.Iterator()
			for it.HasNext() {
				if !yield(it.Next()) {
					return
				}
			}
		}
	}
}

// Stats describes the shape of an index.
type Stats struct {
	Records  int
	NGrams   int
	Postings uint64
	// MaxBlock is the size of the largest block and MaxBlockNGram its key.
	MaxBlock      uint64
	MaxBlockNGram string
}

// Stats returns index statistics.
func (idx *Index) Stats() Stats {
	s := Stats{
		Records:  len(idx.ids),
		NGrams:   len(idx.grams),
		Postings: idx.postings,
	}
	for g, bm := range idx.grams {
		c := bm.GetCardinality()
		if c > s.MaxBlock || (c == s.MaxBlock && g < s.MaxBlockNGram) {
			s.MaxBlock = c
			s.MaxBlockNGram = g
		}
	}
	return s
}
