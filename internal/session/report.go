package session

import "github.com/rs/zerolog"

// ErrorReporter receives failures the registry recovers from locally.
// Implementations must not block.
type ErrorReporter interface {
	ReportError(op string, err error)
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(op string, err error)

// ReportError calls f(op, err).
func (f ReporterFunc) ReportError(op string, err error) { f(op, err) }

// Discard drops every report.
var Discard ErrorReporter = ReporterFunc(func(string, error) {})

// LogReporter logs reports at error level.
func LogReporter(l zerolog.Logger) ErrorReporter {
	return ReporterFunc(func(op string, err error) {
		l.Error().Str("op", op).Err(err).Msg("Session operation failed")
	})
}
