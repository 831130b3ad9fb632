package hnswix

import "log/slog"

// SlogLogger adapts a *slog.Logger to the Logger interface. It is the
// default logger used when no Option overrides it.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l, or slog.Default() if l is nil.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *SlogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *SlogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
