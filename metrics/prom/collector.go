// Package prom exports run metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/dirt"
)

// Collector implements dirt.MetricsCollector and dirt.MemoryRecorder with
// Prometheus counters, histograms and a gauge.
type Collector struct {
	targetLatency *prometheus.HistogramVec
	blockLatency  prometheus.Histogram
	targets       *prometheus.CounterVec
	candidates    prometheus.Counter
	degenerate    prometheus.Counter
	blocks        prometheus.Counter
	blockRecords  prometheus.Counter
	memory        prometheus.Gauge
}

var (
	_ dirt.MetricsCollector = (*Collector)(nil)
	_ dirt.MemoryRecorder   = (*Collector)(nil)
)

// NewCollector creates a Collector and registers it with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		targetLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dirt_target_duration_seconds",
			Help:    "Time to rank the candidates of one target",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"status"}),
		blockLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dirt_block_duration_seconds",
			Help:    "Time to compute one block of targets",
			Buckets: prometheus.DefBuckets,
		}),
		targets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dirt_targets_total",
			Help: "Targets processed",
		}, []string{"status"}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dirt_candidates_total",
			Help: "Candidate records emitted",
		}),
		degenerate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dirt_degenerate_scores_total",
			Help: "Candidate records with a NaN or infinite NDIV",
		}),
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dirt_blocks_total",
			Help: "Blocks handed to the sink",
		}),
		blockRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dirt_block_records_total",
			Help: "Records written by completed blocks",
		}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dirt_result_memory_bytes",
			Help: "Result memory currently reserved by running blocks",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.targetLatency, c.blockLatency, c.targets, c.candidates,
		c.degenerate, c.blocks, c.blockRecords, c.memory,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNewCollector is like NewCollector but panics on registration errors.
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

// RecordTarget implements dirt.MetricsCollector.
func (c *Collector) RecordTarget(candidates, degenerate int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "skipped"
	}
	c.targetLatency.WithLabelValues(status).Observe(d.Seconds())
	c.targets.WithLabelValues(status).Inc()
	c.candidates.Add(float64(candidates))
	c.degenerate.Add(float64(degenerate))
}

// RecordBlock implements dirt.MetricsCollector.
func (c *Collector) RecordBlock(_ int, records int, d time.Duration) {
	c.blockLatency.Observe(d.Seconds())
	c.blocks.Inc()
	c.blockRecords.Add(float64(records))
}

// RecordMemory implements dirt.MemoryRecorder.
func (c *Collector) RecordMemory(bytes int64) {
	c.memory.Set(float64(bytes))
}
