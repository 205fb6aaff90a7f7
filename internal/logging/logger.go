// Package logging implements the fixed-prefix log writer used by every
// component of the CLI.
//
// All user-facing diagnostics go through a single Logger so that output is
// uniform and scriptable: informational lines carry "[i]", warnings "[w]",
// errors "[e]", and verbose-only lines "[v]". Colors are applied to the
// prefix only, via fatih/color, which degrades to plain text automatically
// when stdout is not a terminal or NO_COLOR is set.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Level identifies the prefix and color applied to a log line.
type Level int

const (
	// LevelInfo is the default level for progress and status lines ("[i]").
	LevelInfo Level = iota

	// LevelWarn is for non-fatal anomalies the user should see ("[w]").
	LevelWarn

	// LevelError is for failures, printed to stderr ("[e]").
	LevelError

	// LevelVerbose is debug-grade output, only emitted when verbose mode
	// is enabled ("[v]").
	LevelVerbose
)

// prefix returns the fixed two-character marker for the level.
func (l Level) prefix() string {
	switch l {
	case LevelWarn:
		return "[w]"
	case LevelError:
		return "[e]"
	case LevelVerbose:
		return "[v]"
	default:
		return "[i]"
	}
}

// sprintFunc returns the color formatter for the level's prefix.
func (l Level) sprintFunc() func(a ...interface{}) string {
	switch l {
	case LevelWarn:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case LevelError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case LevelVerbose:
		return color.New(color.FgCyan).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

// Logger writes prefixed, optionally colored log lines. It is safe for
// concurrent use; batched container operations log from worker goroutines.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

// New creates a Logger writing info/warn/verbose lines to stdout and error
// lines to stderr.
func New(verbose bool) *Logger {
	return &Logger{out: os.Stdout, errOut: os.Stderr, verbose: verbose}
}

// NewWithWriters creates a Logger with explicit writers. Used by tests to
// capture output.
func NewWithWriters(out, errOut io.Writer, verbose bool) *Logger {
	return &Logger{out: out, errOut: errOut, verbose: verbose}
}

// Verbose reports whether verbose-level lines are emitted.
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Log writes a single message at the given level. Multi-line messages are
// prefixed on the first line and indented on continuation lines so that
// blocks (e.g. duplicate-config reports) stay visually grouped.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	if level == LevelVerbose && !l.verbose {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	w := l.out
	if level == LevelError {
		w = l.errOut
	}

	marker := level.sprintFunc()(level.prefix())

	l.mu.Lock()
	defer l.mu.Unlock()

	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(w, "%s %s\n", marker, line)
			continue
		}
		// Continuation lines align under the message body.
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// Info logs at LevelInfo.
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.Log(LevelWarn, format, args...)
}

// Error logs at LevelError.
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Debug logs at LevelVerbose. The line is dropped unless verbose mode
// is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelVerbose, format, args...)
}
