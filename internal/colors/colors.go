// Package colors provides color output utilities for the CLI surface.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Color constants
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

const checkmark = "✓"

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled = false
	logger       Logger
	mu           sync.RWMutex

	// Output writers, replaceable for testing.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func init() {
	if val := os.Getenv("STOCKTRAY_DEBUG"); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugEnabled = enabled
}

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetOutputs overrides the output writers. Returns a restore function.
func SetOutputs(out, err io.Writer) func() {
	mu.Lock()
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, err
	mu.Unlock()
	return func() {
		mu.Lock()
		stdout, stderr = prevOut, prevErr
		mu.Unlock()
	}
}

func mirror() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := mirror(); l != nil {
		l.Error(msg)
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(stderr, "%sError:%s %s%s\n", Red, Reset, msg, Reset)
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := mirror(); l != nil {
		l.Warn(msg)
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(stderr, "%sWarning:%s %s%s\n", Yellow, Reset, msg, Reset)
}

// Info outputs an informational message to stdout.
func Info(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := mirror(); l != nil {
		l.Info(msg)
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(stdout, "%s%s%s\n", Blue, msg, Reset)
}

// Success outputs a success message to stdout.
func Success(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := mirror(); l != nil {
		l.Info(msg, "type", "success")
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(stdout, "%s%s%s %s%s\n", Green, checkmark, Reset, msg, Reset)
}

// Debug outputs a debug message to stderr when debug is enabled.
func Debug(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := mirror(); l != nil {
		l.Debug(msg)
	}
	mu.RLock()
	defer mu.RUnlock()
	if !debugEnabled {
		return
	}
	fmt.Fprintf(stderr, "%sDebug:%s %s%s\n", Cyan, Reset, msg, Reset)
}
