// Package logging configures the zerolog loggers used by the
// CLI and the packages it drives.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel applies when the configured level is empty or
// unknown.
const DefaultLevel = zerolog.WarnLevel

// ParseLevel maps a level name to a zerolog level, falling back
// to DefaultLevel.
func ParseLevel(name string) zerolog.Level {
	if name == "" {
		return DefaultLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return DefaultLevel
	}
	return level
}

// New returns a leveled logger writing to w. With pretty set the
// output is human-readable console text; otherwise JSON lines.
// The global logger used by package-level log calls is replaced
// with the result.
func New(level string, w io.Writer, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	logger := zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
	return logger
}
