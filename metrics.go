package fuzzyjoin

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/fuzzyjoin/blocking"
	"github.com/hupe1980/fuzzyjoin/engine"
)

// MetricsCollector defines the interface for collecting join metrics.
// Implementations must be thread-safe.
type MetricsCollector interface {
	// RecordJoin records a completed (or failed) join.
	RecordJoin(stats Stats, duration time.Duration, err error)

	// RecordIndex records building the blocking index.
	RecordIndex(stats blocking.Stats, duration time.Duration)

	// RecordProgress records the number of left records processed so far.
	RecordProgress(processed, total int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordJoin(Stats, time.Duration, error)    {}
func (NoopMetricsCollector) RecordIndex(blocking.Stats, time.Duration) {}
func (NoopMetricsCollector) RecordProgress(int, int)                   {}

// BasicMetricsCollector is a simple in-memory metrics collector.
// Useful for testing and basic monitoring.
type BasicMetricsCollector struct {
	JoinCount      atomic.Int64
	JoinErrors     atomic.Int64
	JoinDurationNs atomic.Int64

	Comparisons atomic.Int64
	Excluded    atomic.Int64
	Matches     atomic.Int64

	IndexCount      atomic.Int64
	IndexDurationNs atomic.Int64
	IndexNGrams     atomic.Int64

	Processed atomic.Int64
}

// RecordJoin implements MetricsCollector.
func (b *BasicMetricsCollector) RecordJoin(stats Stats, duration time.Duration, err error) {
	b.JoinCount.Add(1)
	b.JoinDurationNs.Add(duration.Nanoseconds())
	if err != nil {
		b.JoinErrors.Add(1)
	}
	b.Comparisons.Add(stats.Comparisons)
	b.Excluded.Add(stats.Excluded)
	b.Matches.Add(stats.Matches)
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(stats blocking.Stats, duration time.Duration) {
	b.IndexCount.Add(1)
	b.IndexDurationNs.Add(duration.Nanoseconds())
	b.IndexNGrams.Add(int64(stats.NGrams))
}

// RecordProgress implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProgress(processed, _ int) {
	b.Processed.Store(int64(processed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		JoinCount:      b.JoinCount.Load(),
		JoinErrors:     b.JoinErrors.Load(),
		AvgJoinLatency: avgDuration(b.JoinDurationNs.Load(), b.JoinCount.Load()),

		Comparisons: b.Comparisons.Load(),
		Excluded:    b.Excluded.Load(),
		Matches:     b.Matches.Load(),

		IndexCount:      b.IndexCount.Load(),
		AvgIndexLatency: avgDuration(b.IndexDurationNs.Load(), b.IndexCount.Load()),
		IndexNGrams:     b.IndexNGrams.Load(),

		Processed: b.Processed.Load(),
	}
}

// BasicMetricsStats is a snapshot of metrics.
type BasicMetricsStats struct {
	JoinCount      int64
	JoinErrors     int64
	AvgJoinLatency time.Duration

	Comparisons int64
	Excluded    int64
	Matches     int64

	IndexCount      int64
	AvgIndexLatency time.Duration
	IndexNGrams     int64

	Processed int64
}

func avgDuration(totalNs, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(totalNs / count)
}

// metricsObserver adapts a MetricsCollector to engine.MetricsObserver.
type metricsObserver struct {
	engine.NoopMetricsObserver
	mc MetricsCollector
}

func (o metricsObserver) OnIndex(d time.Duration, stats blocking.Stats, err error) {
	if err == nil {
		o.mc.RecordIndex(stats, d)
	}
}

func (o metricsObserver) OnProgress(processed, total int, _ time.Duration) {
	o.mc.RecordProgress(processed, total)
}
