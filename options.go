package fuzzyjoin

import (
	"time"

	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/compare"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/distance"
	"github.com/hupe1980/fuzzyjoin/table"
)

// NumberPolicy selects the numeric comparison stage.
type NumberPolicy = config.NumberPolicy

const (
	NumbersNone        = config.NumbersNone
	NumbersExact       = config.NumbersExact
	NumbersPermutation = config.NumbersPermutation
	NumbersSubset      = config.NumbersSubset
)

// ExcludeFunc reports whether a candidate pair must be skipped.
type ExcludeFunc = config.ExcludeFunc

// options holds the internal configuration for a Joiner.
type options struct {
	config    []config.Option
	logger    *Logger
	metrics   MetricsCollector
	pipeline  *compare.Pipeline
	tableOpts []func(*table.Options)
}

// Option configures a Joiner.
type Option func(*options)

// WithIDs sets the identifier field of the left and right table.
func WithIDs(left, right string) Option {
	return withConfig(config.IDs(left, right))
}

// WithFields sets the comparison field of the left and right table.
func WithFields(left, right string) Option {
	return withConfig(config.Fields(left, right))
}

// WithThreshold sets the minimum score in [0,1] for a match.
func WithThreshold(t float64) Option {
	return withConfig(config.WithThreshold(t))
}

// WithNGramSize sets the blocking n-gram size.
func WithNGramSize(n int) Option {
	return withConfig(config.WithNGramSize(n))
}

// WithNumbers enables a numeric policy. Only one policy may be enabled.
func WithNumbers(p NumberPolicy) Option {
	return withConfig(config.WithNumbers(p))
}

// WithCollate sets the collation applied before comparison and blocking.
func WithCollate(fn collate.Func) Option {
	return withConfig(config.WithCollate(fn))
}

// WithExclude sets the pair exclusion predicate.
func WithExclude(fn ExcludeFunc) Option {
	return withConfig(config.WithExclude(fn))
}

// WithDistance sets the edit distance used by the fuzzy stage.
func WithDistance(fn distance.Func) Option {
	return withConfig(config.WithDistance(fn))
}

// WithProgress enables periodic progress reports.
func WithProgress(interval time.Duration) Option {
	return withConfig(config.WithProgress(true, interval))
}

// WithWorkers sets the number of parallel scanning shards.
func WithWorkers(n int) Option {
	return withConfig(config.WithWorkers(n))
}

// WithStrictIDs rejects tables with duplicate identifiers.
func WithStrictIDs() Option {
	return withConfig(config.WithStrictIDs(true))
}

// WithConfigOptions appends raw config options, e.g. those returned by
// registry.Resolve.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *options) {
		o.config = append(o.config, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithPipeline replaces the default comparison pipeline.
func WithPipeline(p *compare.Pipeline) Option {
	return func(o *options) {
		o.pipeline = p
	}
}

// WithTableOptions sets the options used by JoinFiles to load tables.
func WithTableOptions(optFns ...func(*table.Options)) Option {
	return func(o *options) {
		o.tableOpts = append(o.tableOpts, optFns...)
	}
}

func withConfig(opt config.Option) Option {
	return func(o *options) {
		o.config = append(o.config, opt)
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	return o
}
