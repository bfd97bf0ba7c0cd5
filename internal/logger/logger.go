package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w at info level.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// Default returns a stderr logger, at debug level when verbose is set.
func Default(verbose bool) *Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return NewWithLevel(os.Stderr, level)
}

// Discard returns a logger that drops all output. Useful in tests.
func Discard() *Logger {
	return New(io.Discard)
}
