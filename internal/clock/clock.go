// Package clock provides an injectable abstraction over time operations so
// the dispatch core can be driven by a mock clock in tests instead of the
// wall clock.
package clock

import "time"

// Clock abstracts time operations for testing.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	Since(t time.Time) time.Duration
	NewTimer(d time.Duration) Timer
}

// Timer abstracts a cancelable, one-shot timer.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Real implements Clock using the actual wall clock.
type Real struct{}

// New returns a Clock backed by the real wall clock.
func New() Clock { return Real{} }

func (Real) Now() time.Time                       { return time.Now() }
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (Real) Since(t time.Time) time.Duration      { return time.Since(t) }

func (Real) NewTimer(d time.Duration) Timer {
	return &realTimer{timer: time.NewTimer(d)}
}

type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) C() <-chan time.Time { return t.timer.C }
func (t *realTimer) Stop() bool          { return t.timer.Stop() }
