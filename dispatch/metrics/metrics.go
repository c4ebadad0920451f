// Package metrics provides a Prometheus-backed dispatch.MetricsRecorder,
// registered the way shaiso-Automata's cmd/automata-api registers its
// counters: promauto collectors backed by a caller-supplied registerer and
// exposed through promhttp.Handler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements dispatch.MetricsRecorder. It is constructed with a
// namespace so a process embedding more than one Executor can register
// distinct collector sets.
type Collector struct {
	submitAccepted   prometheus.Counter
	submitRejected   prometheus.Counter
	retryScheduled   prometheus.Counter
	retriesExhausted prometheus.Counter
	queued           prometheus.Gauge
	running          prometheus.Gauge
	flushDuration    prometheus.Histogram
}

// New registers the executor's collectors with reg and returns a
// Collector ready to pass to dispatch.WithMetrics. Pass
// prometheus.DefaultRegisterer to expose it via promhttp.Handler().
func New(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		submitAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_submit_accepted_total",
			Help:      "Tasks admitted for execution.",
		}),
		submitRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_submit_rejected_total",
			Help:      "Tasks rejected at admission, either over the queue cap or after shutdown.",
		}),
		retryScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_retry_scheduled_total",
			Help:      "Attempts that failed and were rescheduled.",
		}),
		retriesExhausted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_retries_exhausted_total",
			Help:      "Tasks that failed on their final permitted attempt.",
		}),
		queued: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_queued",
			Help:      "Envelopes admitted but not yet running.",
		}),
		running: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_running",
			Help:      "Envelopes currently executing.",
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_flush_seconds",
			Help:      "Observed wall-clock duration of completed flushes.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (c *Collector) SubmitAccepted()   { c.submitAccepted.Inc() }
func (c *Collector) SubmitRejected()   { c.submitRejected.Inc() }
func (c *Collector) RetryScheduled()   { c.retryScheduled.Inc() }
func (c *Collector) RetriesExhausted() { c.retriesExhausted.Inc() }

func (c *Collector) QueuedDelta(delta int64)  { c.queued.Add(float64(delta)) }
func (c *Collector) RunningDelta(delta int64) { c.running.Add(float64(delta)) }

func (c *Collector) FlushObserved(d time.Duration) {
	c.flushDuration.Observe(d.Seconds())
}
