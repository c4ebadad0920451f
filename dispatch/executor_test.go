package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// countingTask records the wall-clock time of each invocation and fails
// failures times before succeeding.
type countingTask struct {
	mu       sync.Mutex
	failures int
	runs     []time.Time
}

func (t *countingTask) Run(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs = append(t.runs, time.Now())
	if len(t.runs) <= t.failures {
		return errBoom
	}
	return nil
}

func (t *countingTask) runCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.runs)
}

func (t *countingTask) timestamps() []time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Time, len(t.runs))
	copy(out, t.runs)
	return out
}

// hintedTask fails a fixed number of times, returning a suggested retry
// delay from hints for each failed attempt (by index), -1 once hints run
// out.
type hintedTask struct {
	countingTask
	hints []int64
}

func (t *hintedTask) SuggestedRetryDelay() int64 {
	t.mu.Lock()
	idx := len(t.runs) - 1
	t.mu.Unlock()
	if idx < 0 || idx >= len(t.hints) {
		return -1
	}
	return t.hints[idx]
}

// alwaysFailTask fails on every run, never suggesting a delay.
type alwaysFailTask struct {
	countingTask
}

func (t *alwaysFailTask) Run(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs = append(t.runs, time.Now())
	return errBoom
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %v", timeout)
}

func TestExecutor_HappyPath(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1))
	defer exec.Shutdown()

	task := &countingTask{}
	handle := exec.Submit(task)

	waitUntil(t, time.Second, handle.IsDone)
	assert.Equal(t, 1, task.runCount())
	assert.False(t, handle.IsCanceled())
}

func TestExecutor_RetryWithSuggestion(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1), WithMaxRetries(5))
	defer exec.Shutdown()

	task := &hintedTask{countingTask: countingTask{failures: 2}, hints: []int64{500, 200}}
	exec.Submit(task)

	waitUntil(t, 3*time.Second, func() bool { return task.runCount() == 3 })

	ts := task.timestamps()
	require.Len(t, ts, 3)
	assert.GreaterOrEqual(t, ts[1].Sub(ts[0]), 500*time.Millisecond)
	assert.GreaterOrEqual(t, ts[2].Sub(ts[1]), 200*time.Millisecond)
}

func TestExecutor_BackoffFallback(t *testing.T) {
	backoff := backoffFunc(func(attempt int) time.Duration {
		return time.Duration(attempt+1) * 10 * time.Millisecond
	})
	exec := NewExecutor(WithCorePoolSize(1), WithMaxRetries(5), WithBackoff(backoff))
	defer exec.Shutdown()

	task := &countingTask{failures: 3}
	exec.Submit(task)

	waitUntil(t, 2*time.Second, func() bool { return task.runCount() == 4 })

	ts := task.timestamps()
	require.Len(t, ts, 4)
	assert.GreaterOrEqual(t, ts[1].Sub(ts[0]), 10*time.Millisecond)
	assert.GreaterOrEqual(t, ts[2].Sub(ts[1]), 20*time.Millisecond)
	assert.GreaterOrEqual(t, ts[3].Sub(ts[2]), 30*time.Millisecond)
}

func TestExecutor_RetriesExhausted(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1), WithMaxRetries(2), WithBackoff(NewFixedBackoff(time.Millisecond)))
	defer exec.Shutdown()

	task := &alwaysFailTask{}
	handle := exec.Submit(task)

	waitUntil(t, time.Second, func() bool { return task.runCount() == 3 })
	waitUntil(t, time.Second, handle.IsDone)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, task.runCount())
}

func TestExecutor_AdmissionCap(t *testing.T) {
	block := make(chan struct{})
	exec := NewExecutor(WithCorePoolSize(1), WithMaxQueueSize(2))
	defer func() {
		close(block)
		exec.Shutdown()
	}()

	blocker := TaskFunc(func(ctx context.Context) error {
		<-block
		return nil
	})

	h1 := exec.Submit(blocker)
	h2 := exec.Submit(blocker)
	h3 := exec.Submit(blocker)

	assert.False(t, h1.IsCanceled())
	assert.False(t, h2.IsCanceled())
	assert.True(t, h3.IsCanceled())
	assert.True(t, h3.IsDone())
}

func TestExecutor_FlushDrainsSnapshot(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(2))
	defer exec.Shutdown()

	slow := TaskFunc(func(ctx context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	exec.Submit(slow)
	exec.Submit(slow)

	time.Sleep(10 * time.Millisecond) // let both start running before the snapshot
	handle := exec.Flush(time.Second)

	exec.Submit(TaskFunc(func(ctx context.Context) error { return nil }))

	handle.Wait()
	assert.True(t, handle.Done())
}

func TestExecutor_FlushCancelBeforeDrain(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1))
	defer exec.Shutdown()

	handle := exec.Flush(time.Minute)
	handle.Cancel()

	waitUntil(t, time.Second, handle.Done)
	assert.True(t, handle.IsCanceled())
	assert.False(t, handle.TimedOut())
}

func TestExecutor_FlushTimesOut(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1))
	defer exec.Shutdown()

	slow := TaskFunc(func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	exec.Submit(slow)
	time.Sleep(10 * time.Millisecond)

	handle := exec.Flush(20 * time.Millisecond)
	handle.Wait()

	assert.True(t, handle.TimedOut())
	assert.False(t, handle.IsCanceled())
	assert.GreaterOrEqual(t, handle.Elapsed(), 20*time.Millisecond)
}

func TestExecutor_FlushAfterShutdownReturnsCanceled(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1))
	exec.Shutdown()

	handle := exec.Flush(time.Second)
	assert.True(t, handle.Done())
	assert.True(t, handle.IsCanceled())
}

func TestExecutor_ConcurrentFlushSingleFlight(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1))
	defer exec.Shutdown()

	// A running task keeps the flush in progress while every caller arrives.
	block := newBlockingTask()
	exec.Submit(block)
	waitUntil(t, time.Second, block.hasStarted)

	var wg sync.WaitGroup
	handles := make([]*FlushHandle, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = exec.Flush(time.Second)
		}(i)
	}
	wg.Wait()
	close(block.release)

	first := handles[0]
	for _, h := range handles {
		assert.Same(t, first, h)
	}
	first.Wait()
}

// blockingTask runs until released or its context is canceled, signaling
// startedCh the first time it is entered.
type blockingTask struct {
	startedCh chan struct{}
	started   sync.Once
	release   chan struct{}
}

func newBlockingTask() *blockingTask {
	return &blockingTask{startedCh: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingTask) Run(ctx context.Context) error {
	b.started.Do(func() { close(b.startedCh) })
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.release:
		return nil
	}
}

func (b *blockingTask) hasStarted() bool {
	select {
	case <-b.startedCh:
		return true
	default:
		return false
	}
}

func TestExecutor_ShutdownNowInterruptsAndDoesNotRetry(t *testing.T) {
	exec := NewExecutor(WithCorePoolSize(1), WithMaxQueueSize(10), WithMaxRetries(5))

	running := newBlockingTask()
	exec.Submit(running)
	waitUntil(t, time.Second, running.hasStarted)

	queuedTask := &countingTask{}
	h2 := exec.Submit(queuedTask)

	exec.ShutdownNow()

	assert.True(t, h2.IsCanceled())
	assert.True(t, h2.IsDone())
	assert.Equal(t, 0, queuedTask.runCount())

	queued, running2 := exec.gate.snapshot()
	assert.Equal(t, int64(0), queued)
	assert.Equal(t, int64(0), running2)
}

func TestExecutor_RejectsAfterShutdown(t *testing.T) {
	var rejected atomic.Bool
	exec := NewExecutor(WithCorePoolSize(1), WithRejectedHandler(func(task Task) { rejected.Store(true) }))
	exec.Shutdown()

	handle := exec.Submit(TaskFunc(func(ctx context.Context) error { return nil }))
	assert.True(t, handle.IsCanceled())
	assert.True(t, rejected.Load())
}

// backoffFunc adapts a function to BackoffStrategy for tests.
type backoffFunc func(attempt int) time.Duration

func (f backoffFunc) Delay(attempt int) time.Duration { return f(attempt) }
