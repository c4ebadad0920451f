package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/metlos/sentry-go/internal/clock"
)

// flushCountdown counts down from a snapshot of the running-task count to
// zero, closing done exactly once when it reaches zero. It is the Go
// counterpart of the original source's single-use CountDownLatch.
type flushCountdown struct {
	remaining atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

func newFlushCountdown(n int64) *flushCountdown {
	fc := &flushCountdown{done: make(chan struct{})}
	fc.remaining.Store(n)
	if n <= 0 {
		fc.closeOnce.Do(func() { close(fc.done) })
	}
	return fc
}

func (fc *flushCountdown) signal() {
	if fc.remaining.Add(-1) <= 0 {
		fc.closeOnce.Do(func() { close(fc.done) })
	}
}

// flushBarrier is the single-flight flush primitive described in §4.5,
// grounded directly in RetryingThreadPoolExecutor's flushing
// AtomicReference<Future<Void>> plus its cleanupHandled AtomicBoolean and
// volatile flushLatch CountDownLatch — collapsed here into one
// atomic.Pointer[FlushHandle] slot claimed by compare-and-swap.
type flushBarrier struct {
	gate    *admissionGate
	clock   clock.Clock
	metrics MetricsRecorder

	slot atomic.Pointer[FlushHandle]
}

func newFlushBarrier(gate *admissionGate, clk clock.Clock, m MetricsRecorder) *flushBarrier {
	return &flushBarrier{gate: gate, clock: clk, metrics: m}
}

// currentCountdown returns the currently active flush's countdown, or nil
// if no flush is in progress. The executor's after-run cleanup step reads this on every
// single envelope completion — whether or not that envelope was part of the
// snapshot — exactly mirroring the original source's unconditional
// "if (latch != null) latch.countDown()".
func (b *flushBarrier) currentCountdown() *flushCountdown {
	h := b.slot.Load()
	if h == nil {
		return nil
	}
	return h.countdown.Load()
}

// flush returns the in-flight FlushHandle if one exists (single-flight: all
// concurrent callers converge on the same handle), or starts a new drain.
func (b *flushBarrier) flush(timeout time.Duration) *FlushHandle {
	for {
		if existing := b.slot.Load(); existing != nil {
			return existing
		}
		h := newFlushHandle(b, timeout)
		if b.slot.CompareAndSwap(nil, h) {
			go h.drain()
			return h
		}
	}
}

// flushOutcome records which of the three ways §7 distinguishes a resolved
// flush actually happened: drained, timed out, or canceled.
type flushOutcome int32

const (
	flushPending flushOutcome = iota
	flushDrained
	flushTimedOut
	flushCanceled
)

// FlushHandle represents one in-flight (or already-resolved) flush. Cancel
// and Wait are safe to call from any goroutine, including concurrently.
type FlushHandle struct {
	barrier *flushBarrier
	timeout time.Duration

	cleanupHandled atomic.Bool
	canceled       atomic.Bool
	countdown      atomic.Pointer[flushCountdown]
	outcome        atomic.Int32
	elapsed        atomic.Int64

	cancelCh chan struct{}
	doneCh   chan struct{}
}

func newFlushHandle(b *flushBarrier, timeout time.Duration) *FlushHandle {
	return &FlushHandle{
		barrier:  b,
		timeout:  timeout,
		cancelCh: make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// canceledFlushHandle returns an already-canceled, already-done handle with
// no backing barrier, used when Flush is called on an executor that has
// already begun shutting down (§4.6): there is nothing left to drain.
func canceledFlushHandle() *FlushHandle {
	h := &FlushHandle{
		cancelCh: make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	h.cleanupHandled.Store(true)
	h.canceled.Store(true)
	h.outcome.Store(int32(flushCanceled))
	close(h.cancelCh)
	close(h.doneCh)
	return h
}

// drain runs in its own goroutine. It takes the running-count snapshot only
// after it has won the cleanupHandled race — if the handle was canceled
// before the drainer got here, cleanupHandled is already claimed and drain
// does nothing, per the two-regime cancellation split in §4.5.
func (h *FlushHandle) drain() {
	if !h.cleanupHandled.CompareAndSwap(false, true) {
		return
	}
	started := h.barrier.clock.Now()

	_, running := h.barrier.gate.snapshot()
	cd := newFlushCountdown(running)
	h.countdown.Store(cd)

	var timerC <-chan time.Time
	if h.timeout > 0 {
		timer := h.barrier.clock.NewTimer(h.timeout)
		defer timer.Stop()
		timerC = timer.C()
	}

	outcome := flushDrained
	select {
	case <-cd.done:
	case <-timerC:
		outcome = flushTimedOut
	case <-h.cancelCh:
		outcome = flushCanceled
	}

	h.elapsed.Store(int64(h.barrier.clock.Since(started)))
	h.outcome.Store(int32(outcome))
	h.countdown.Store(nil)
	h.barrier.slot.Store(nil)
	h.barrier.metrics.FlushObserved(h.barrier.clock.Since(started))
	close(h.doneCh)
}

// Cancel ends the flush early. If the drainer has not yet taken its
// snapshot, cancellation wins the cleanupHandled race outright and the
// drain never starts observing task completions. If the drainer is already
// waiting, Cancel just interrupts the wait.
func (h *FlushHandle) Cancel() {
	if !h.canceled.CompareAndSwap(false, true) {
		return
	}
	if h.cleanupHandled.CompareAndSwap(false, true) {
		h.outcome.Store(int32(flushCanceled))
		h.barrier.slot.Store(nil)
		close(h.doneCh)
		return
	}
	close(h.cancelCh)
}

// Done reports whether the flush has concluded, by completion, timeout, or
// cancellation.
func (h *FlushHandle) Done() bool {
	select {
	case <-h.doneCh:
		return true
	default:
		return false
	}
}

// Wait blocks until the flush concludes.
func (h *FlushHandle) Wait() {
	<-h.doneCh
}

// IsCanceled reports whether this flush concluded because Cancel was
// called, as opposed to draining fully or timing out (§7).
func (h *FlushHandle) IsCanceled() bool {
	return flushOutcome(h.outcome.Load()) == flushCanceled
}

// TimedOut reports whether this flush concluded because its timeout
// elapsed before every running task finished (§7).
func (h *FlushHandle) TimedOut() bool {
	return flushOutcome(h.outcome.Load()) == flushTimedOut
}

// Elapsed returns how long the drain ran before concluding. It is zero
// until the flush is done.
func (h *FlushHandle) Elapsed() time.Duration {
	return time.Duration(h.elapsed.Load())
}
