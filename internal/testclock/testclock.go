// Package testclock adapts quartz's mock clock to the dispatch core's Clock
// interface, the same way the teacher's internal/testutils wraps quartz for
// gopipeline's own Clock seam.
package testclock

import (
	"testing"
	"time"

	"github.com/coder/quartz"

	"github.com/metlos/sentry-go/internal/clock"
)

// Wrapper adapts a *quartz.Mock to clock.Clock.
type Wrapper struct {
	*quartz.Mock
}

// New creates a mock clock for testing, wrapped as a clock.Clock.
func New(t testing.TB) *Wrapper {
	return &Wrapper{Mock: quartz.NewMock(t)}
}

func (w *Wrapper) Now() time.Time {
	return w.Mock.Now()
}

func (w *Wrapper) After(d time.Duration) <-chan time.Time {
	return w.Mock.NewTimer(d).C
}

func (w *Wrapper) Since(t time.Time) time.Duration {
	return w.Mock.Since(t)
}

func (w *Wrapper) NewTimer(d time.Duration) clock.Timer {
	return &timerWrapper{timer: w.Mock.NewTimer(d)}
}

type timerWrapper struct {
	timer *quartz.Timer
}

func (t *timerWrapper) C() <-chan time.Time { return t.timer.C }
func (t *timerWrapper) Stop() bool          { return t.timer.Stop() }
