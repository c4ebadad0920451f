package dispatch

import (
	"fmt"
	"log/slog"
)

// Logger is the diagnostic logging seam, matching the spec's description of
// an external, optional diagnostic logger (§7). Shape follows the teacher's
// retry.Logger interface.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger discards everything; it is the default when no Logger option
// is supplied, so the executor never nil-checks on the hot path.
type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// SlogLogger adapts log/slog to Logger, the way shaiso-Automata's
// internal/telemetry package builds its structured logging on slog rather
// than a third-party logging library — there isn't one anywhere in the
// retrieved pack.
type SlogLogger struct {
	L *slog.Logger
}

// NewSlogLogger wraps l, or slog.Default() if l is nil.
func NewSlogLogger(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{L: l}
}

func (s SlogLogger) Debugf(format string, args ...interface{}) {
	s.L.Debug(fmt.Sprintf(format, args...))
}

func (s SlogLogger) Infof(format string, args ...interface{}) {
	s.L.Info(fmt.Sprintf(format, args...))
}

func (s SlogLogger) Warnf(format string, args ...interface{}) {
	s.L.Warn(fmt.Sprintf(format, args...))
}

func (s SlogLogger) Errorf(format string, args ...interface{}) {
	s.L.Error(fmt.Sprintf(format, args...))
}
