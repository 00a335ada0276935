package dirt

import (
	"log/slog"

	"github.com/hupe1980/dirt/dispersion"
	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/resource"
	"github.com/hupe1980/dirt/selector"
)

type options struct {
	topN             int
	ranges           matrix.RangeConfig
	workers          int
	blocks           int
	blockSize        int
	epsilon          float64
	metricsCollector MetricsCollector
	logger           *Logger
	logLevel         *slog.Level
	rc               *resource.Controller
}

func defaultOptions() options {
	return options{
		topN:             selector.DefaultTopN,
		ranges:           matrix.DefaultRangeConfig(),
		blocks:           2,
		epsilon:          dispersion.Epsilon,
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures a Finder.
type Option func(*options)

// WithTopN sets the number of candidates returned per target.
// Values <= 0 make New fail with ErrInvalidTopN.
func WithTopN(n int) Option {
	return func(o *options) {
		o.topN = n
	}
}

// WithControlRange sets the inclusive control sample range used for scoring.
//
// Example:
//
//	f, err := dirt.New(m, dirt.WithControlRange("C1", "C9"))
func WithControlRange(start, end string) Option {
	return func(o *options) {
		o.ranges.ControlStart = start
		o.ranges.ControlEnd = end
	}
}

// WithAllRange sets the inclusive sample range reported for each candidate.
// It must start at the same sample as the control range.
func WithAllRange(start, end string) Option {
	return func(o *options) {
		o.ranges.AllStart = start
		o.ranges.AllEnd = end
	}
}

// WithRangeConfig replaces both ranges at once.
func WithRangeConfig(cfg matrix.RangeConfig) Option {
	return func(o *options) {
		o.ranges = cfg
	}
}

// WithWorkers bounds the number of blocks computed concurrently.
// It is ignored when a resource controller is supplied.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBlocks sets how many contiguous blocks a run is split into.
func WithBlocks(n int) Option {
	return func(o *options) {
		o.blocks = n
	}
}

// WithBlockSize splits runs into blocks of at most n targets instead of a
// fixed block count.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithEpsilon overrides the ratio denominator guard.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &dirt.BasicMetricsCollector{}
//	f, _ := dirt.New(m, dirt.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLogLevel installs a text logger on stderr at the given level when no
// logger was configured with WithLogger.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logLevel = &level
	}
}

// WithResourceController shares worker slots, the result memory budget, and
// the IO limit with other components.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.logger == nil {
		if o.logLevel != nil {
			o.logger = NewTextLogger(*o.logLevel)
		} else {
			o.logger = NoopLogger()
		}
	}
	if o.rc == nil && o.workers > 0 {
		o.rc = resource.NewController(resource.Config{MaxWorkers: int64(o.workers)})
	}
	return o
}
