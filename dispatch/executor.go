package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type execState int32

const (
	stateRunning execState = iota
	stateShuttingDown
	stateStopped
)

// Executor is the bounded, retrying, flushable work pool described by the
// core (§1-§6), grounded in the original source's
// RetryingThreadPoolExecutor and the teacher's pkg/worker fixed pool for
// the worker-goroutine lifecycle.
type Executor struct {
	cfg   executorConfig
	gate  *admissionGate
	dq    *delayQueue
	flush *flushBarrier

	state atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	shutdownOnce sync.Once
}

// NewExecutor constructs an Executor and starts its dispatcher and worker
// goroutines. Call Shutdown or ShutdownNow to release them.
func NewExecutor(opts ...Option) *Executor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	gate := newAdmissionGate(cfg.maxQueueSize)
	e := &Executor{
		cfg:    cfg,
		gate:   gate,
		dq:     newDelayQueue(cfg.clock, gate, cfg.metrics),
		flush:  newFlushBarrier(gate, cfg.clock, cfg.metrics),
		ctx:    ctx,
		cancel: cancel,
	}

	go e.dq.run()
	e.wg.Add(cfg.corePoolSize)
	for i := 0; i < cfg.corePoolSize; i++ {
		go e.runWorker()
	}
	return e
}

// Submit admits task for execution, returning a handle that reflects only
// the outcome of the first attempt (§6, §9). If admission is refused the
// handle is already canceled and done, and its Err reports ErrQueueFull or
// ErrShutdown. tryAdmit is advisory, not a
// reservation (§4.2); a submission refused because the executor is
// shutting down or shut down invokes the configured RejectedHandler, if
// any, exactly once.
func (e *Executor) Submit(task Task) *CompletionHandle {
	if execState(e.state.Load()) != stateRunning {
		if e.cfg.rejected != nil {
			e.cfg.rejected(task)
		}
		e.cfg.metrics.SubmitRejected()
		return canceledHandle(ErrShutdown)
	}
	if !e.gate.tryAdmit() {
		e.cfg.metrics.SubmitRejected()
		return canceledHandle(ErrQueueFull)
	}

	e.gate.incQueued()
	e.cfg.metrics.QueuedDelta(1)
	e.cfg.metrics.SubmitAccepted()

	handle := newCompletionHandle()
	env := newTaskEnvelope(task, e.cfg.clock.Now(), handle)
	e.dq.push(env)
	return handle
}

// Flush starts (or joins) a drain of every task running at the moment the
// drain begins, returning a handle to wait on or cancel. See flush.go for
// the single-flight and snapshot semantics. Once Shutdown or ShutdownNow
// has been called, Flush returns immediately with an already-canceled,
// already-done handle (§4.6) rather than starting a drain that can never
// observe new completions.
func (e *Executor) Flush(timeout time.Duration) *FlushHandle {
	if execState(e.state.Load()) != stateRunning {
		return canceledFlushHandle()
	}
	return e.flush.flush(timeout)
}

// Shutdown stops admitting new tasks and waits for every task already
// queued or running to finish before returning. Tasks mid-retry continue
// their remaining attempts.
func (e *Executor) Shutdown() {
	if !e.transitionTo(stateShuttingDown) {
		return
	}
	e.waitForDrain()
	e.stopWorkers()
}

// ShutdownNow stops admitting new tasks, cancels the context passed to
// every in-flight task's Run — the cooperative interruption signal
// described in §4.4's "interrupted" outcome — and, once workers have
// drained, cancels every envelope that never got a chance to run.
// Mirroring ScheduledThreadPoolExecutor.shutdownNow(), workers are halted
// before the queue is drained, to keep the window in which a still-queued
// envelope could slip into execution as small as possible.
func (e *Executor) ShutdownNow() {
	e.state.Store(int32(stateStopped))
	e.stopWorkers()
	for _, env := range e.dq.pending() {
		env.handle.Cancel()
		env.handle.markDone()
		e.gate.decQueued()
		e.cfg.metrics.QueuedDelta(-1)
	}
}

func (e *Executor) transitionTo(s execState) bool {
	return e.state.CompareAndSwap(int32(stateRunning), int32(s))
}

func (e *Executor) waitForDrain() {
	for {
		queued, running := e.gate.snapshot()
		if queued == 0 && running == 0 {
			return
		}
		timer := e.cfg.clock.NewTimer(5 * time.Millisecond)
		<-timer.C()
		timer.Stop()
	}
}

func (e *Executor) stopWorkers() {
	e.shutdownOnce.Do(func() {
		e.state.Store(int32(stateStopped))
		e.cancel()
		e.dq.stop()
	})
	e.wg.Wait()
}

func (e *Executor) runWorker() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case env, ok := <-e.dq.ready:
			if !ok {
				return
			}
			e.execute(env)
		}
	}
}

// execute runs a single envelope's one attempt and carries out the
// after-run protocol of §4.4 steps 3-5: observe the outcome, decide
// whether to reschedule, and always run cleanup.
func (e *Executor) execute(env *taskEnvelope) {
	e.gate.queuedToRunning()
	e.cfg.metrics.QueuedDelta(-1)
	e.cfg.metrics.RunningDelta(1)

	env.attempt++
	err := env.task.Run(e.ctx)

	switch {
	case e.ctx.Err() != nil:
		// Interrupted: the worker itself received a cancellation signal.
		// Stop processing this envelope without rescheduling or reporting
		// failure through the core.
		env.handle.markDone()

	case env.handle.IsCanceled():
		env.handle.markDone()

	case err == nil:
		env.handle.markDone()

	case env.attempt <= e.cfg.maxRetries:
		e.cfg.logger.Warnf("dispatch: attempt %d failed, rescheduling: %v", env.attempt, err)
		e.cfg.metrics.RetryScheduled()
		delay := env.nextDelay(e.cfg.backoff)
		next := env.reschedule(e.cfg.clock.Now().Add(delay))
		e.gate.incQueued()
		e.cfg.metrics.QueuedDelta(1)
		e.dq.push(next)
		env.handle.markDone()

	default:
		e.cfg.metrics.RetriesExhausted()
		e.cfg.logger.Errorf("dispatch: %v", &RetriesExhaustedError{Attempts: env.attempt, Cause: err})
		env.handle.markDone()
	}

	e.gate.decRunning()
	e.cfg.metrics.RunningDelta(-1)
	if cd := e.flush.currentCountdown(); cd != nil {
		cd.signal()
	}
}
