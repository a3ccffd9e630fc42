package engine

import (
	"time"

	"github.com/hupe1980/fuzzyjoin/blocking"
)

// MetricsObserver defines the interface for observing join events.
// Implementations must be safe for concurrent use; OnProgress is called from
// scanning workers.
type MetricsObserver interface {
	// OnState is called on every state transition.
	OnState(state State)

	// OnIndex is called when the blocking index build completes.
	OnIndex(duration time.Duration, stats blocking.Stats, err error)

	// OnProgress reports the number of left records processed so far.
	OnProgress(processed, total int, elapsed time.Duration)

	// OnShard is called when a shard finishes scanning.
	OnShard(shard int, stats Stats, duration time.Duration)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnState(State)                               {}
func (NoopMetricsObserver) OnIndex(time.Duration, blocking.Stats, error) {}
func (NoopMetricsObserver) OnProgress(int, int, time.Duration)          {}
func (NoopMetricsObserver) OnShard(int, Stats, time.Duration)           {}
