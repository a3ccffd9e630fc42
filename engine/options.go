package engine

import (
	"log/slog"

	"github.com/hupe1980/fuzzyjoin/compare"
)

// Options configures an Engine.
type Options struct {
	// Pipeline is the comparison pipeline (default: compare.DefaultPipeline).
	Pipeline *compare.Pipeline
	// Logger receives state transitions, index statistics and progress.
	Logger *slog.Logger
	// Observer receives join events.
	Observer MetricsObserver
	// LargeBlockRatio is the fraction of the right table a single block may
	// hold before a warning is logged (default: 0.5).
	LargeBlockRatio float64
}

// WithPipeline sets the comparison pipeline.
func WithPipeline(p *compare.Pipeline) func(*Options) {
	return func(o *Options) {
		o.Pipeline = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithObserver sets the metrics observer.
func WithObserver(obs MetricsObserver) func(*Options) {
	return func(o *Options) {
		o.Observer = obs
	}
}
