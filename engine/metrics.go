package engine

import "time"

// MetricsObserver receives per-target and per-block measurements.
// Implementations must be safe for concurrent use.
type MetricsObserver interface {
	// OnTarget is called after each target. err is non-nil for skipped targets.
	OnTarget(duration time.Duration, records, degenerate int, err error)

	// OnBlock is called after a block has been written to the sink.
	OnBlock(duration time.Duration, targets, records int, err error)

	// OnMemory reports the reserved result memory.
	OnMemory(bytes int64)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnTarget(time.Duration, int, int, error) {}
func (NoopMetricsObserver) OnBlock(time.Duration, int, int, error)  {}
func (NoopMetricsObserver) OnMemory(int64)                          {}
