package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors, following pkg/types/errors.go's ErrXxx pattern. Submit
// itself never returns an error — a rejected submission simply yields an
// already-canceled handle (§7) — but the handle's Err reports which of
// these it was canceled for.
var (
	// ErrQueueFull is reported by the handle Submit returns when the soft
	// admission cap is hit.
	ErrQueueFull = errors.New("dispatch: queue full")

	// ErrShutdown is reported by the handle Submit returns after Shutdown
	// or ShutdownNow.
	ErrShutdown = errors.New("dispatch: executor is shut down")

	// ErrCanceled is reported by a CompletionHandle canceled for no more
	// specific reason — via Cancel, rather than a rejection path.
	ErrCanceled = errors.New("dispatch: canceled")
)

// RetriesExhaustedError wraps the final failure of a task that ran out of
// attempts, carrying the attempt count for diagnostics. It is never
// returned to a caller — the core does not propagate task failures — but
// it is what gets passed to the configured Logger.
type RetriesExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("dispatch: retries exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Cause }
