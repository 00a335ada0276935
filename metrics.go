package dirt

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/dirt/engine"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; see package metrics/prom for a ready-made one.
type MetricsCollector interface {
	// RecordTarget is called after each target. candidates is the number of
	// records emitted, degenerate how many of them have a non-finite score.
	// err is non-nil when the target was skipped.
	RecordTarget(candidates, degenerate int, duration time.Duration, err error)

	// RecordBlock is called after each block has been handed to its sink.
	RecordBlock(targets, records int, duration time.Duration)
}

// MemoryRecorder is an optional extension of MetricsCollector that receives
// the result memory currently reserved by a run.
type MemoryRecorder interface {
	RecordMemory(bytes int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTarget(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBlock(int, int, time.Duration)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TargetCount      atomic.Int64
	TargetErrors     atomic.Int64
	TargetTotalNanos atomic.Int64
	CandidateCount   atomic.Int64
	DegenerateCount  atomic.Int64
	BlockCount       atomic.Int64
	BlockRecords     atomic.Int64
	BlockTotalNanos  atomic.Int64
	MemoryPeak       atomic.Int64
}

// RecordTarget implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTarget(candidates, degenerate int, duration time.Duration, err error) {
	b.TargetCount.Add(1)
	b.TargetTotalNanos.Add(duration.Nanoseconds())
	b.CandidateCount.Add(int64(candidates))
	b.DegenerateCount.Add(int64(degenerate))
	if err != nil {
		b.TargetErrors.Add(1)
	}
}

// RecordBlock implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBlock(_, records int, duration time.Duration) {
	b.BlockCount.Add(1)
	b.BlockRecords.Add(int64(records))
	b.BlockTotalNanos.Add(duration.Nanoseconds())
}

// RecordMemory implements MemoryRecorder.
func (b *BasicMetricsCollector) RecordMemory(bytes int64) {
	for {
		peak := b.MemoryPeak.Load()
		if bytes <= peak || b.MemoryPeak.CompareAndSwap(peak, bytes) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TargetCount:     b.TargetCount.Load(),
		TargetErrors:    b.TargetErrors.Load(),
		TargetAvgNanos:  avg(b.TargetTotalNanos.Load(), b.TargetCount.Load()),
		CandidateCount:  b.CandidateCount.Load(),
		DegenerateCount: b.DegenerateCount.Load(),
		BlockCount:      b.BlockCount.Load(),
		BlockRecords:    b.BlockRecords.Load(),
		BlockAvgNanos:   avg(b.BlockTotalNanos.Load(), b.BlockCount.Load()),
		MemoryPeak:      b.MemoryPeak.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TargetCount     int64
	TargetErrors    int64
	TargetAvgNanos  int64
	CandidateCount  int64
	DegenerateCount int64
	BlockCount      int64
	BlockRecords    int64
	BlockAvgNanos   int64
	MemoryPeak      int64
}

// engineObserver forwards engine measurements to a MetricsCollector.
type engineObserver struct {
	c MetricsCollector
}

var _ engine.MetricsObserver = engineObserver{}

func (o engineObserver) OnTarget(d time.Duration, records, degenerate int, err error) {
	o.c.RecordTarget(records, degenerate, d, err)
}

func (o engineObserver) OnBlock(d time.Duration, targets, records int, _ error) {
	o.c.RecordBlock(targets, records, d)
}

func (o engineObserver) OnMemory(bytes int64) {
	if mr, ok := o.c.(MemoryRecorder); ok {
		mr.RecordMemory(bytes)
	}
}
