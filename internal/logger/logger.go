// Package logger wraps zerolog behind the small leveled interface the rest
// of the core uses. Call sites use printf-style messages; structured fields
// are limited to the component tag.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level controls the verbosity of the logger.
type Level = zerolog.Level

const (
	// LevelOff disables all log output.
	LevelOff Level = zerolog.Disabled
	// LevelNormal enables info, warn, and error output.
	LevelNormal Level = zerolog.InfoLevel
	// LevelVerbose enables all output including debug.
	LevelVerbose Level = zerolog.DebugLevel
)

// ParseLevel maps a config string to a level, defaulting to normal.
func ParseLevel(s string) Level {
	switch s {
	case "off":
		return LevelOff
	case "debug", "verbose":
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// Logger is a leveled logger. All methods are safe for concurrent use.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	zl := zerolog.New(cw).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}
