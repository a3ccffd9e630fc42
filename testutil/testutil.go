package testutil

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/fuzzyjoin/compare"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

var (
	firstNames = []string{
		"anna", "bernd", "carla", "dieter", "emma", "felix", "greta", "hans",
		"ida", "jonas", "karl", "lena", "max", "nora", "otto", "paula",
	}
	lastNames = []string{
		"mueller", "schmidt", "schneider", "fischer", "weber", "meyer",
		"wagner", "becker", "schulz", "hoffmann", "koch", "richter",
	}
	streets = []string{
		"main street", "hauptstrasse", "bahnhofstrasse", "gartenweg",
		"kirchplatz", "lindenallee", "schulstrasse", "am markt",
	}
)

const letters = "abcdefghijklmnopqrstuvwxyz"

// Name returns a random "first last" name.
func (r *RNG) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return firstNames[r.rand.Intn(len(firstNames))] + " " + lastNames[r.rand.Intn(len(lastNames))]
}

// Address returns a random street address with a house number.
func (r *RNG) Address() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return streets[r.rand.Intn(len(streets))] + " " + strconv.Itoa(1+r.rand.Intn(120))
}

// Typo applies one random edit (substitution, insertion, deletion or
// transposition) to s.
func (r *RNG) Typo(s string) string {
	rs := []rune(s)
	if len(rs) < 2 {
		return s + "x"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.rand.Intn(len(rs) - 1)
	c := rune(letters[r.rand.Intn(len(letters))])
	switch r.rand.Intn(4) {
	case 0:
		rs[i] = c
	case 1:
		rs = append(rs[:i], append([]rune{c}, rs[i:]...)...)
	case 2:
		rs = append(rs[:i], rs[i+1:]...)
	default:
		rs[i], rs[i+1] = rs[i+1], rs[i]
	}
	return string(rs)
}

// Table returns a table with columns id, name and address holding n random
// records. Identifiers are "<name>-<i>".
func (r *RNG) Table(name string, n int) model.Table {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{name + "-" + strconv.Itoa(i), r.Name(), r.Address()}
	}
	return model.NewTable(name, []string{"id", "name", "address"}, rows)
}

// Variants returns a copy of src named name where each name value receives a
// typo with probability p.
func (r *RNG) Variants(name string, src model.Table, p float64) model.Table {
	rows := make([][]string, len(src.Records))
	for i, rec := range src.Records {
		n := rec.Value("name")
		if r.Float64() < p {
			n = r.Typo(n)
		}
		rows[i] = []string{name + "-" + strconv.Itoa(i), n, rec.Value("address")}
	}
	return model.NewTable(name, []string{"id", "name", "address"}, rows)
}

// ExactJoin compares every left record with every right record using the
// default pipeline. It is the ground truth for blocked joins.
func ExactJoin(left, right model.Table, cfg *config.Config) (model.MatchSet, error) {
	pl := compare.DefaultPipeline()
	matches := model.MatchSet{}
	for _, l := range left.Records {
		for _, r := range right.Records {
			if cfg.Exclude(l, r) {
				continue
			}
			p, err := compare.NewPair(l, r, cfg)
			if err != nil {
				return nil, err
			}
			out := pl.Run(p, cfg)
			if out.Pass {
				matches = append(matches, model.Match{Score: out.Score, Left: l, Right: r, Trace: out.Trace})
			}
		}
	}
	return matches, nil
}

// Recall returns the fraction of exact pairs found in approx. An empty exact
// set has recall 1.
func Recall(approx, exact []model.PairKey) float64 {
	if len(exact) == 0 {
		return 1
	}
	found := make(map[model.PairKey]struct{}, len(approx))
	for _, k := range approx {
		found[k] = struct{}{}
	}
	hits := 0
	for _, k := range exact {
		if _, ok := found[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(exact))
}

// Subset reports whether every key of a occurs in b.
func Subset(a, b []model.PairKey) bool {
	set := make(map[model.PairKey]struct{}, len(b))
	for _, k := range b {
		set[k] = struct{}{}
	}
	for _, k := range a {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}
