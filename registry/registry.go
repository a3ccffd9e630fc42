package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/distance"
	"github.com/hupe1980/fuzzyjoin/model"
)

// ExcludeFactory builds an exclusion predicate for the given identifier
// fields.
type ExcludeFactory func(leftID, rightID string) config.ExcludeFunc

// Registry is a concurrency-safe set of named functions.
type Registry[F any] struct {
	kind string

	mu sync.RWMutex
	fn map[string]F
}

// New creates an empty registry. kind names the function family in errors.
func New[F any](kind string) *Registry[F] {
	return &Registry[F]{kind: kind, fn: make(map[string]F)}
}

// Kind returns the function family name.
func (r *Registry[F]) Kind() string { return r.kind }

// Register adds fn under name. Names are unique.
func (r *Registry[F]) Register(name string, fn F) error {
	if name == "" {
		return &model.ConfigError{Field: r.kind, Reason: "empty name"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.fn[name]; ok {
		return &model.ConfigError{Field: r.kind, Reason: fmt.Sprintf("%q already registered", name)}
	}
	r.fn[name] = fn
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry[F]) MustRegister(name string, fn F) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Has reports whether name is registered.
func (r *Registry[F]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.fn[name]
	return ok
}

// Lookup returns the function registered under name.
func (r *Registry[F]) Lookup(name string) (F, error) {
	r.mu.RLock()
	fn, ok := r.fn[name]
	r.mu.RUnlock()

	if !ok {
		var zero F
		return zero, &model.ConfigError{
			Field:  r.kind,
			Reason: fmt.Sprintf("unknown name %q (available: %s)", name, strings.Join(r.Names(), ", ")),
		}
	}
	return fn, nil
}

// Names returns the registered names in sorted order.
func (r *Registry[F]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fn))
	for name := range r.fn {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Built-in function names.
const (
	CollateDefault  = "default"
	CollateIdentity = "identity"
	CollateLower    = "lower"
	CollateFold     = "fold"

	DistanceLevenshtein = "levenshtein"
	DistanceOSA         = "osa"

	ExcludeNone   = "none"
	ExcludeSameID = "same-id"
)

var (
	// Collators holds collate functions.
	Collators = New[collate.Func]("collate")
	// Distances holds edit distance functions.
	Distances = New[distance.Func]("distance")
	// Excluders holds exclusion predicate factories.
	Excluders = New[ExcludeFactory]("exclude")
)

func init() {
	Collators.MustRegister(CollateDefault, collate.Default)
	Collators.MustRegister(CollateIdentity, collate.Identity)
	Collators.MustRegister(CollateLower, collate.Lower)
	Collators.MustRegister(CollateFold, collate.Fold)

	Distances.MustRegister(DistanceLevenshtein, distance.Levenshtein)
	Distances.MustRegister(DistanceOSA, distance.OSA)

	Excluders.MustRegister(ExcludeNone, func(string, string) config.ExcludeFunc {
		return config.NeverExclude
	})
	Excluders.MustRegister(ExcludeSameID, SameID)
}

// SameID excludes pairs whose identifiers are equal, which skips the
// trivial matches of a self-join.
func SameID(leftID, rightID string) config.ExcludeFunc {
	return func(left, right model.Record) bool {
		return left.Value(leftID) == right.Value(rightID)
	}
}

// Resolve looks up the named functions and returns them as config options.
// Empty names keep the defaults.
func Resolve(collateName, excludeName, distanceName string, leftID, rightID string) ([]config.Option, error) {
	var opts []config.Option

	if collateName != "" {
		fn, err := Collators.Lookup(collateName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithCollate(fn))
	}
	if excludeName != "" {
		factory, err := Excluders.Lookup(excludeName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithExclude(factory(leftID, rightID)))
	}
	if distanceName != "" {
		fn, err := Distances.Lookup(distanceName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithDistance(fn))
	}
	return opts, nil
}
