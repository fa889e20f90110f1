package logging

import (
	"fmt"
	"log"
	"os"
)

// Logger provides structured logging for the harness
type Logger struct {
	prefix  string
	verbose bool
	logger  *log.Logger
}

var globalVerbose bool

// SetVerboseAll enables debug output on every logger, set once at startup
// from the -v flag before any goroutines run
func SetVerboseAll(verbose bool) {
	globalVerbose = verbose
}

// NewLogger creates a new logger with a prefix
func NewLogger(prefix string) *Logger {
	return &Logger{
		prefix: prefix,
		logger: log.New(os.Stderr, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
	}
}

// SetVerbose enables debug output
func (l *Logger) SetVerbose(verbose bool) {
	l.verbose = verbose
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.logWithKV("INFO", msg, keysAndValues...)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.logWithKV("WARN", msg, keysAndValues...)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.logWithKV("ERROR", msg, keysAndValues...)
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	if !l.verbose && !globalVerbose {
		return
	}
	l.logWithKV("DEBUG", msg, keysAndValues...)
}

func (l *Logger) logWithKV(level, msg string, keysAndValues ...interface{}) {
	kvStr := ""
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			kvStr += fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1])
		}
	}
	l.logger.Printf("[%s] %s%s", level, msg, kvStr)
}
