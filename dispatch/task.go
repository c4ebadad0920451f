package dispatch

import "context"

// Task is an opaque unit of work submitted to the Executor. Run may fail by
// returning an error, or exit cooperatively when ctx is done — the executor
// treats that as interruption, not failure, and never reschedules it (§7).
//
// A Task must not carry a result value: return values are not observable
// through the core. Callers needing a result must capture it themselves
// (e.g. into a channel closed over by the task).
type Task interface {
	Run(ctx context.Context) error
}

// RetryHinter is an optional Task extension. If a submitted Task implements
// it, the executor consults SuggestedRetryDelay before falling back to the
// configured BackoffStrategy.
//
// A negative return value means "no suggestion" — defer to the backoff
// strategy. A value of zero is a concrete instruction to reschedule
// immediately; it is never treated as "absent" (see the spec's open
// question on this exact point).
type RetryHinter interface {
	SuggestedRetryDelay() (delayMillis int64)
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func(ctx context.Context) error

// Run invokes the underlying function.
func (f TaskFunc) Run(ctx context.Context) error { return f(ctx) }
