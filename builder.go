// This file implements the fluent builder API for creating Joiners.
// Builders are immutable - each method returns a new builder with the updated configuration.
package fuzzyjoin

import (
	"slices"
	"time"

	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/compare"
	"github.com/hupe1980/fuzzyjoin/distance"
)

// On creates a new builder joining the left field with the right field.
//
// The builder is immutable - each method returns a new builder with the updated configuration.
//
// Example:
//
//	joiner, err := fuzzyjoin.On("name", "company").
//	    IDs("id", "crm_id").
//	    Threshold(0.85).
//	    Workers(4).
//	    Build()
func On(leftField, rightField string) JoinBuilder {
	return JoinBuilder{opts: []Option{WithFields(leftField, rightField)}}
}

// JoinBuilder is an immutable fluent builder for creating Joiners.
type JoinBuilder struct {
	opts []Option
}

func (b JoinBuilder) with(opt Option) JoinBuilder {
	opts := slices.Clone(b.opts)
	return JoinBuilder{opts: append(opts, opt)}
}

// IDs sets the identifier fields of the left and right table.
func (b JoinBuilder) IDs(left, right string) JoinBuilder {
	return b.with(WithIDs(left, right))
}

// Threshold sets the minimum score for a match.
func (b JoinBuilder) Threshold(t float64) JoinBuilder {
	return b.with(WithThreshold(t))
}

// NGramSize sets the blocking n-gram size.
func (b JoinBuilder) NGramSize(n int) JoinBuilder {
	return b.with(WithNGramSize(n))
}

// NumbersExact requires both values to contain the same numbers in order.
func (b JoinBuilder) NumbersExact() JoinBuilder {
	return b.with(WithNumbers(NumbersExact))
}

// NumbersPermutation requires both values to contain the same numbers.
func (b JoinBuilder) NumbersPermutation() JoinBuilder {
	return b.with(WithNumbers(NumbersPermutation))
}

// NumbersSubset requires the numbers of one value to be contained in the other.
func (b JoinBuilder) NumbersSubset() JoinBuilder {
	return b.with(WithNumbers(NumbersSubset))
}

// Collate sets the collation function.
func (b JoinBuilder) Collate(fn collate.Func) JoinBuilder {
	return b.with(WithCollate(fn))
}

// Exclude sets the pair exclusion predicate.
func (b JoinBuilder) Exclude(fn ExcludeFunc) JoinBuilder {
	return b.with(WithExclude(fn))
}

// Distance sets the edit distance.
func (b JoinBuilder) Distance(fn distance.Func) JoinBuilder {
	return b.with(WithDistance(fn))
}

// Progress enables progress reports every interval.
func (b JoinBuilder) Progress(interval time.Duration) JoinBuilder {
	return b.with(WithProgress(interval))
}

// Workers sets the number of parallel shards.
func (b JoinBuilder) Workers(n int) JoinBuilder {
	return b.with(WithWorkers(n))
}

// StrictIDs rejects duplicate identifiers.
func (b JoinBuilder) StrictIDs() JoinBuilder {
	return b.with(WithStrictIDs())
}

// Pipeline replaces the comparison pipeline.
func (b JoinBuilder) Pipeline(p *compare.Pipeline) JoinBuilder {
	return b.with(WithPipeline(p))
}

// Logger sets the logger.
func (b JoinBuilder) Logger(l *Logger) JoinBuilder {
	return b.with(WithLogger(l))
}

// Metrics sets the metrics collector.
func (b JoinBuilder) Metrics(mc MetricsCollector) JoinBuilder {
	return b.with(WithMetricsCollector(mc))
}

// Build validates the configuration and creates the Joiner.
func (b JoinBuilder) Build() (*Joiner, error) {
	return New(b.opts...)
}
