// Package config holds the immutable configuration of a join.
//
// A Config is built once with New and then shared read-only by the blocking
// index, every comparison stage and every worker of a join.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/distance"
	"github.com/hupe1980/fuzzyjoin/model"
)

// NumberPolicy selects the numeric comparison stage.
type NumberPolicy int

const (
	// NumbersNone disables numeric comparison.
	NumbersNone NumberPolicy = iota
	// NumbersExact requires identical integer sequences.
	NumbersExact
	// NumbersPermutation requires the same multiset of integers.
	NumbersPermutation
	// NumbersSubset requires one integer set to contain the other.
	NumbersSubset
)

func (p NumberPolicy) String() string {
	switch p {
	case NumbersNone:
		return "none"
	case NumbersExact:
		return "exact"
	case NumbersPermutation:
		return "permutation"
	case NumbersSubset:
		return "subset"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParseNumberPolicy parses a policy name as produced by String.
func ParseNumberPolicy(s string) (NumberPolicy, error) {
	switch s {
	case "", "none":
		return NumbersNone, nil
	case "exact":
		return NumbersExact, nil
	case "permutation":
		return NumbersPermutation, nil
	case "subset":
		return NumbersSubset, nil
	default:
		return NumbersNone, &model.ConfigError{Field: "numbers", Reason: fmt.Sprintf("unknown policy %q", s)}
	}
}

// ExcludeFunc reports whether a candidate pair must be skipped without
// comparison.
type ExcludeFunc func(left, right model.Record) bool

// NeverExclude never excludes a pair.
func NeverExclude(model.Record, model.Record) bool { return false }

// Default values.
const (
	DefaultThreshold        = 0.7
	DefaultNGramSize        = 3
	DefaultProgressInterval = 5 * time.Second
)

// Config describes a join. Fields are read-only after New returns.
type Config struct {
	LeftID     string
	RightID    string
	LeftField  string
	RightField string

	// Threshold is the minimum fuzzy score in [0,1].
	Threshold float64
	// NGramSize is the blocking n-gram length (>= 1).
	NGramSize int
	// Numbers is the active numeric policy; at most one may be enabled.
	Numbers NumberPolicy

	Collate  collate.Func
	Exclude  ExcludeFunc
	Distance distance.Func

	// Progress enables periodic progress reporting every ProgressInterval.
	Progress         bool
	ProgressInterval time.Duration

	// Workers is the number of left-table shards scanned in parallel.
	Workers int
	// StrictIDs turns duplicate identifiers into errors instead of
	// last-write-wins lookups.
	StrictIDs bool

	// numbers collects every policy requested through options so that
	// conflicting requests are reported instead of silently overridden.
	numbers []NumberPolicy
}

// Option configures a Config.
type Option func(*Config)

// IDs sets the identifier field of the left and right table.
func IDs(left, right string) Option {
	return func(c *Config) {
		c.LeftID, c.RightID = left, right
	}
}

// Fields sets the comparison field of the left and right table.
func Fields(left, right string) Option {
	return func(c *Config) {
		c.LeftField, c.RightField = left, right
	}
}

// WithThreshold sets the minimum score for a match.
func WithThreshold(t float64) Option {
	return func(c *Config) { c.Threshold = t }
}

// WithNGramSize sets the blocking n-gram size.
func WithNGramSize(n int) Option {
	return func(c *Config) { c.NGramSize = n }
}

// WithNumbers enables a numeric policy. Enabling two different policies
// makes New fail.
func WithNumbers(p NumberPolicy) Option {
	return func(c *Config) {
		if p != NumbersNone {
			c.numbers = append(c.numbers, p)
		}
	}
}

// WithCollate sets the collation function.
func WithCollate(fn collate.Func) Option {
	return func(c *Config) { c.Collate = fn }
}

// WithExclude sets the exclusion predicate.
func WithExclude(fn ExcludeFunc) Option {
	return func(c *Config) { c.Exclude = fn }
}

// WithDistance sets the edit distance used for fuzzy scoring.
func WithDistance(fn distance.Func) Option {
	return func(c *Config) { c.Distance = fn }
}

// WithProgress enables progress reporting. interval <= 0 keeps the default.
func WithProgress(enabled bool, interval time.Duration) Option {
	return func(c *Config) {
		c.Progress = enabled
		if interval > 0 {
			c.ProgressInterval = interval
		}
	}
}

// WithWorkers sets the number of parallel shards.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithStrictIDs enables duplicate identifier detection.
func WithStrictIDs(strict bool) Option {
	return func(c *Config) { c.StrictIDs = strict }
}

// New applies opts over the defaults and validates the result.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		Threshold:        DefaultThreshold,
		NGramSize:        DefaultNGramSize,
		Collate:          collate.Default,
		Exclude:          NeverExclude,
		Distance:         distance.Levenshtein,
		ProgressInterval: DefaultProgressInterval,
		Workers:          1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.resolveNumbers(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) resolveNumbers() error {
	for _, p := range c.numbers {
		if c.Numbers != NumbersNone && c.Numbers != p {
			return &model.ConfigError{
				Field:  "numbers",
				Reason: fmt.Sprintf("more than one numeric policy enabled (%s, %s)", c.Numbers, p),
			}
		}
		c.Numbers = p
	}
	c.numbers = nil
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	required := []struct{ field, value string }{
		{"left id", c.LeftID},
		{"right id", c.RightID},
		{"left field", c.LeftField},
		{"right field", c.RightField},
	}
	for _, r := range required {
		if r.value == "" {
			return &model.ConfigError{Field: r.field, Reason: "must not be empty"}
		}
	}
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return &model.ConfigError{Field: "threshold", Reason: fmt.Sprintf("%v is outside [0,1]", c.Threshold)}
	}
	if c.NGramSize < 1 {
		return &model.ConfigError{Field: "ngram size", Reason: fmt.Sprintf("%d is less than 1", c.NGramSize)}
	}
	if c.Numbers < NumbersNone || c.Numbers > NumbersSubset {
		return &model.ConfigError{Field: "numbers", Reason: fmt.Sprintf("unknown policy %d", int(c.Numbers))}
	}
	if c.Collate == nil {
		return &model.ConfigError{Field: "collate", Reason: "function is nil"}
	}
	if c.Exclude == nil {
		return &model.ConfigError{Field: "exclude", Reason: "function is nil"}
	}
	if c.Distance == nil {
		return &model.ConfigError{Field: "distance", Reason: "function is nil"}
	}
	if c.Workers < 1 {
		return &model.ConfigError{Field: "workers", Reason: fmt.Sprintf("%d is less than 1", c.Workers)}
	}
	if c.Progress && c.ProgressInterval <= 0 {
		return &model.ConfigError{Field: "progress interval", Reason: "must be positive"}
	}
	return nil
}
