package dispatch

import (
	"container/heap"
	"sync"

	"github.com/metlos/sentry-go/internal/clock"
)

// delayQueue is the scheduler half of the executor: a goroutine that holds
// envelopes in a heap ordered by runAt and feeds a worker-facing channel
// once each envelope's deadline arrives. It plays the role
// ScheduledThreadPoolExecutor plays in the original source, backed by
// container/heap since nothing in the retrieved pack ships a delay-queue
// library for Go.
type delayQueue struct {
	clock   clock.Clock
	gate    *admissionGate
	metrics MetricsRecorder

	mu    sync.Mutex
	items envelopeHeap

	wake  chan struct{}
	ready chan *taskEnvelope
	quit  chan struct{}
}

func newDelayQueue(clk clock.Clock, gate *admissionGate, metrics MetricsRecorder) *delayQueue {
	return &delayQueue{
		clock:   clk,
		gate:    gate,
		metrics: metrics,
		wake:    make(chan struct{}, 1),
		ready:   make(chan *taskEnvelope),
		quit:    make(chan struct{}),
	}
}

func (dq *delayQueue) push(e *taskEnvelope) {
	dq.mu.Lock()
	heap.Push(&dq.items, e)
	dq.mu.Unlock()
	select {
	case dq.wake <- struct{}{}:
	default:
	}
}

// pending returns every envelope still sitting in the heap, for
// ShutdownNow's cancel-all-queued-work path. It does not remove them.
func (dq *delayQueue) pending() []*taskEnvelope {
	dq.mu.Lock()
	defer dq.mu.Unlock()
	out := make([]*taskEnvelope, len(dq.items))
	copy(out, dq.items)
	return out
}

func (dq *delayQueue) len() int {
	dq.mu.Lock()
	defer dq.mu.Unlock()
	return len(dq.items)
}

func (dq *delayQueue) stop() {
	close(dq.quit)
}

// run is the single dispatcher loop: it sleeps until the soonest deadline,
// a new push wakes it early, and quit tears it down. Ready envelopes are
// handed off on dq.ready, where worker goroutines pick them up.
func (dq *delayQueue) run() {
	for {
		dq.mu.Lock()
		var waitC <-chan struct{}
		var timer clock.Timer
		if len(dq.items) > 0 {
			delay := dq.items[0].runAt.Sub(dq.clock.Now())
			if delay <= 0 {
				e := heap.Pop(&dq.items).(*taskEnvelope)
				dq.mu.Unlock()
				select {
				case dq.ready <- e:
				case <-dq.quit:
					// e was already removed from the heap, so it will
					// never appear in a pending() snapshot either; cancel
					// it here so its handle does not hang forever, and
					// undo the queued bookkeeping its push() established.
					e.handle.Cancel()
					e.handle.markDone()
					dq.gate.decQueued()
					dq.metrics.QueuedDelta(-1)
					return
				}
				continue
			}
			timer = dq.clock.NewTimer(delay)
		}
		dq.mu.Unlock()

		if timer != nil {
			select {
			case <-dq.wake:
				timer.Stop()
			case <-timer.C():
			case <-dq.quit:
				timer.Stop()
				return
			}
		} else {
			waitC = dq.wake
			select {
			case <-waitC:
			case <-dq.quit:
				return
			}
		}
	}
}

// envelopeHeap implements container/heap.Interface ordered by runAt,
// earliest deadline first.
type envelopeHeap []*taskEnvelope

func (h envelopeHeap) Len() int            { return len(h) }
func (h envelopeHeap) Less(i, j int) bool  { return h[i].runAt.Before(h[j].runAt) }
func (h envelopeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *envelopeHeap) Push(x interface{}) { *h = append(*h, x.(*taskEnvelope)) }
func (h *envelopeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
