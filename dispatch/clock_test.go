package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/metlos/sentry-go/internal/testclock"
)

// Exercises withClock against a mock clock: a zero-delay envelope does not
// need the clock to advance at all, since its runAt is already <= Now() at
// submission time.
func TestExecutor_RunsWithMockClock(t *testing.T) {
	mock := testclock.New(t)
	exec := NewExecutor(WithCorePoolSize(1), withClock(mock))
	defer exec.Shutdown()

	task := &countingTask{}
	handle := exec.Submit(task)

	waitUntil(t, time.Second, handle.IsDone)
	assert.Equal(t, 1, task.runCount())
}
