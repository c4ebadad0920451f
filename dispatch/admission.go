package dispatch

import "sync/atomic"

// admissionGate enforces the bounded (queued + running) policy, grounded in
// RetryingThreadPoolExecutor.isSchedulingAllowed(): "getQueue().size() +
// currentlyRunning.get() < maxQueueSize". The check is advisory per §4.2 —
// it does not reserve a slot, so a transient overshoot of one slot per
// concurrently-submitting thread is possible and accepted as a soft cap,
// not a correctness hazard.
type admissionGate struct {
	maxQueueSize int64
	queued       atomic.Int64
	running      atomic.Int64
}

func newAdmissionGate(maxQueueSize int64) *admissionGate {
	return &admissionGate{maxQueueSize: maxQueueSize}
}

// tryAdmit returns true iff queued+running is strictly less than the cap.
func (g *admissionGate) tryAdmit() bool {
	return g.queued.Load()+g.running.Load() < g.maxQueueSize
}

func (g *admissionGate) incQueued()     { g.queued.Add(1) }
func (g *admissionGate) decQueued()     { g.queued.Add(-1) }
func (g *admissionGate) queuedToRunning() {
	g.queued.Add(-1)
	g.running.Add(1)
}
func (g *admissionGate) decRunning() { g.running.Add(-1) }

func (g *admissionGate) snapshot() (queued, running int64) {
	return g.queued.Load(), g.running.Load()
}
