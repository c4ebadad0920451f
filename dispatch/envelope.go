package dispatch

import "time"

// taskEnvelope wraps a submitted task for scheduled execution, grounded in
// the original Java source's AttemptedRunnable/NextAttempt pair, collapsed
// into a single type per the spec's own redesign note (§9): the executor's
// enqueue path is the only place envelopes are created, so there is no
// decorateTask hook to thread an attempt count through separately.
//
// attempt is the number of attempts already made against task, across the
// whole retry chain — incremented immediately before each run, never after.
// On reschedule a brand-new envelope is created carrying the same attempt
// value the old one ended with, so the invariant "the counter at failure
// observation equals attempts already made" holds for the new envelope too
// the first time it runs.
type taskEnvelope struct {
	task    Task
	attempt int
	runAt   time.Time
	handle  *CompletionHandle
}

func newTaskEnvelope(task Task, runAt time.Time, handle *CompletionHandle) *taskEnvelope {
	return &taskEnvelope{task: task, runAt: runAt, handle: handle}
}

// reschedule builds the envelope for the next attempt: same task, same
// attempt count (it is incremented again when that envelope actually
// runs), a new deadline, and — per the original source's behavior, where a
// retried task has no Future exposed to the submitter at all — a fresh,
// unexposed completion handle rather than the caller's original one.
func (e *taskEnvelope) reschedule(runAt time.Time) *taskEnvelope {
	return &taskEnvelope{
		task:    e.task,
		attempt: e.attempt,
		runAt:   runAt,
		handle:  newCompletionHandle(),
	}
}

// nextDelay computes the delay before the next attempt, per §4.4 step 4:
// consult the task's suggested retry delay first; a negative suggestion
// means "no suggestion" and falls back to backoff.Delay. The attempt index
// passed to the backoff strategy is zero-based — the index of the attempt
// that just failed — matching the spec's worked backoff-fallback scenario.
func (e *taskEnvelope) nextDelay(backoff BackoffStrategy) time.Duration {
	if hinter, ok := e.task.(RetryHinter); ok {
		if ms := hinter.SuggestedRetryDelay(); ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return backoff.Delay(e.attempt - 1)
}
