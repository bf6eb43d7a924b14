// Package logger provides leveled logging for the GitSleuth CLI.
// Warnings and errors are always printed to stderr; --verbose adds
// info and debug lines that trace every query, rotation and backoff.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is a logging threshold.
type Level int

// Levels, from most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed in front of each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "LOG"
	}
}

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// CurrentLevel returns the minimum level that is printed.
func CurrentLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose returns true if debug messages are printed.
func IsVerbose() bool {
	return CurrentLevel() <= LevelDebug
}

// SetOutput sets the output writer.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, "["+l.String()+"] "+format+"\n", args...)
}

// Debug prints a message at debug level.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info prints a message at info level.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn prints a message at warn level.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error prints a message at error level.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if level <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Truncate shortens s to at most n runes for log lines, appending "...".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
