package model

import (
	"fmt"
	"strconv"
)

// Schema is the ordered list of field names shared by all records of a table.
type Schema struct {
	names []string
	pos   map[string]int
}

// NewSchema creates a schema from the given field names.
// If a name repeats, lookups resolve to its first position.
func NewSchema(names ...string) *Schema {
	s := &Schema{
		names: append([]string(nil), names...),
		pos:   make(map[string]int, len(names)),
	}
	for i, n := range s.names {
		if _, ok := s.pos[n]; !ok {
			s.pos[n] = i
		}
	}
	return s
}

// Names returns the field names in order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Index returns the position of name in the schema.
func (s *Schema) Index(name string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.pos[name]
	return i, ok
}

// Has reports whether the schema declares name.
func (s *Schema) Has(name string) bool {
	_, ok := s.Index(name)
	return ok
}

// Record is an ordered mapping from field name to string value.
//
// Records are values; copies share the underlying schema and value slice,
// which must not be modified after construction.
type Record struct {
	schema *Schema
	values []string
}

// NewRecord creates a record for schema. values are matched to the schema
// positionally; a short row leaves the trailing fields missing.
func NewRecord(schema *Schema, values []string) Record {
	return Record{schema: schema, values: values}
}

// Get returns the value of field name.
// ok is false when the schema lacks the field or the row is too short.
func (r Record) Get(name string) (value string, ok bool) {
	i, ok := r.schema.Index(name)
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Value returns the value of field name, or "" when missing.
func (r Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Schema returns the record's schema.
func (r Record) Schema() *Schema { return r.schema }

// Fields returns the field names in order.
func (r Record) Fields() []string { return r.schema.Names() }

// Values returns one value per schema field, in schema order.
// Missing trailing fields are returned as empty strings.
func (r Record) Values() []string {
	n := r.schema.Len()
	if len(r.values) >= n {
		return r.values[:n]
	}
	out := make([]string, n)
	copy(out, r.values)
	return out
}

// Map returns the record as a plain map.
func (r Record) Map() map[string]string {
	m := make(map[string]string, r.schema.Len())
	for i, n := range r.schema.Names() {
		if i < len(r.values) {
			m[n] = r.values[i]
		}
	}
	return m
}

// Table is a named, ordered sequence of records sharing one schema.
type Table struct {
	Name    string
	Schema  *Schema
	Records []Record
}

// NewTable builds a table from a header and rows.
func NewTable(name string, header []string, rows [][]string) Table {
	schema := NewSchema(header...)
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = NewRecord(schema, row)
	}
	return Table{Name: name, Schema: schema, Records: records}
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

// StageResult is the outcome of one comparison stage for a record pair.
type StageResult struct {
	// Stage is the stage name (e.g. "fuzzy").
	Stage string `json:"stage"`
	// Pass reports whether the pair survived the stage.
	Pass bool `json:"pass"`
	// Score is meaningful only when Scored is true.
	Score  float64 `json:"score,omitempty"`
	Scored bool    `json:"scored,omitempty"`
	// Final marks a stage that decided the pair; later stages do not run.
	Final bool              `json:"final,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// String returns a compact representation of the stage result.
func (s StageResult) String() string {
	if s.Scored {
		return fmt.Sprintf("%s(pass=%t score=%s)", s.Stage, s.Pass, strconv.FormatFloat(s.Score, 'f', 4, 64))
	}
	return fmt.Sprintf("%s(pass=%t)", s.Stage, s.Pass)
}

// Match is an accepted left/right pair.
type Match struct {
	// Score is the score of the final stage, in [0,1].
	Score float64
	Left  Record
	Right Record
	// Trace holds every stage result in evaluation order.
	Trace []StageResult
}

// MatchSet is an ordered list of matches, in order of first acceptance.
type MatchSet []Match

// PairKey identifies a (left id, right id) pair.
type PairKey struct {
	Left  string
	Right string
}

// String returns a string representation of the PairKey.
func (k PairKey) String() string {
	return fmt.Sprintf("Pair(%s:%s)", k.Left, k.Right)
}

// Keys returns the pair key of each match using the given id fields.
func (ms MatchSet) Keys(leftID, rightID string) []PairKey {
	keys := make([]PairKey, len(ms))
	for i, m := range ms {
		keys[i] = PairKey{Left: m.Left.Value(leftID), Right: m.Right.Value(rightID)}
	}
	return keys
}
