package slottimer

import (
	"fmt"
	"log"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is logger interface.
type Logger interface {
	Printf(string, ...any)
}

// LoggerFunc is a bridge between Logger and any third party logger.
type LoggerFunc func(string, ...any)

// Printf implements Logger interface.
func (f LoggerFunc) Printf(msg string, args ...any) { f(msg, args...) }

// defaultLogger writes nothing.
var defaultLogger = LoggerFunc(func(string, ...any) {})

// Printf is a logger which wraps log.Printf
var Printf = LoggerFunc(log.Printf)

// ZerologLogger routes scheduler messages into l at warn level.
func ZerologLogger(l zerolog.Logger) Logger {
	l = l.With().Str("component", "slottimer").Logger()
	return LoggerFunc(func(format string, args ...any) {
		l.Warn().Msg(strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
	})
}
