package dispatch

import "time"

// MetricsRecorder is the optional observability seam (§9 supplemented
// features): an executor with no Metrics option set runs identically, just
// without anyone counting. dispatch/metrics provides a Prometheus-backed
// implementation; any other collector can satisfy this interface too.
type MetricsRecorder interface {
	SubmitAccepted()
	SubmitRejected()
	RetryScheduled()
	RetriesExhausted()
	QueuedDelta(delta int64)
	RunningDelta(delta int64)
	FlushObserved(d time.Duration)
}

// noopMetrics is the default MetricsRecorder; every method is a no-op so
// the executor never has to nil-check on the hot path.
type noopMetrics struct{}

func (noopMetrics) SubmitAccepted()          {}
func (noopMetrics) SubmitRejected()          {}
func (noopMetrics) RetryScheduled()          {}
func (noopMetrics) RetriesExhausted()        {}
func (noopMetrics) QueuedDelta(int64)        {}
func (noopMetrics) RunningDelta(int64)       {}
func (noopMetrics) FlushObserved(time.Duration) {}
