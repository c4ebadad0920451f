package dispatch

import (
	"github.com/metlos/sentry-go/internal/clock"
)

// RejectedHandler is invoked exactly on the shutdown-rejection path (§7,
// supplemented from the original source's constructor-supplied
// RejectedExecutionHandler): a task submitted after Shutdown or
// ShutdownNow. It is never invoked for admission-cap rejections, which the
// original source also routes through the pool's standard rejection
// policy but which this core treats as an ordinary, silent backpressure
// signal instead (§4.2).
type RejectedHandler func(task Task)

type executorConfig struct {
	corePoolSize int
	maxQueueSize int64
	maxRetries   int
	backoff      BackoffStrategy
	logger       Logger
	metrics      MetricsRecorder
	clock        clock.Clock
	rejected     RejectedHandler
}

func defaultConfig() executorConfig {
	return executorConfig{
		corePoolSize: 1,
		maxQueueSize: 64,
		maxRetries:   3,
		backoff:      NewExponentialBackoff(),
		logger:       noopLogger{},
		metrics:      noopMetrics{},
		clock:        clock.New(),
		rejected:     nil,
	}
}

// Option configures an Executor at construction time, matching the
// teacher's functional-options pattern used throughout pkg/worker and
// pkg/retry.
type Option func(*executorConfig)

// WithCorePoolSize sets the number of worker goroutines. Default 1.
func WithCorePoolSize(n int) Option {
	return func(c *executorConfig) {
		if n > 0 {
			c.corePoolSize = n
		}
	}
}

// WithMaxQueueSize sets the soft admission cap on queued+running tasks.
// Default 64.
func WithMaxQueueSize(n int64) Option {
	return func(c *executorConfig) {
		if n > 0 {
			c.maxQueueSize = n
		}
	}
}

// WithMaxRetries sets the retry ceiling; total attempts per task top out
// at maxRetries+1. Default 3.
func WithMaxRetries(n int) Option {
	return func(c *executorConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff overrides the default exponential backoff strategy.
func WithBackoff(b BackoffStrategy) Option {
	return func(c *executorConfig) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithLogger overrides the default no-op diagnostic logger.
func WithLogger(l Logger) Option {
	return func(c *executorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics overrides the default no-op MetricsRecorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *executorConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithRejectedHandler sets the callback invoked when a task is submitted
// after shutdown.
func WithRejectedHandler(h RejectedHandler) Option {
	return func(c *executorConfig) {
		c.rejected = h
	}
}

// withClock overrides the clock; unexported because only tests need a
// mock clock, wired through internal/testclock.
func withClock(clk clock.Clock) Option {
	return func(c *executorConfig) {
		if clk != nil {
			c.clock = clk
		}
	}
}
