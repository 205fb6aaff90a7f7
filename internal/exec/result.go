package exec

import (
	"regexp"
	"time"
)

// Result is the uniform outcome of one execution attempt. It is immutable
// once constructed; batch calls produce exactly one Result per input
// command, in input order.
type Result struct {
	// Command is the shell command as submitted.
	Command string

	// Output is the combined stdout+stderr with terminal control codes
	// stripped. It is populated even when incremental logging was
	// suppressed.
	Output string

	// ExitCode is the command's exit code. -1 marks a failure to construct
	// or run the back-end (the command never produced a real exit status).
	ExitCode int

	// Duration is the wall-clock time of the attempt.
	Duration time.Duration

	// Err carries the execution error for non-zero exits and back-end
	// failures when the caller opted into non-raising mode.
	Err error
}

// Options control how commands are executed. The zero value is not the
// default — use DefaultOptions, which enables TriggerError.
type Options struct {
	// TriggerError, when set, turns a non-zero exit into a returned error
	// instead of a silently returned Result. Callers wanting
	// inspection-without-raising clear it.
	TriggerError bool

	// SuppressOutput disables incremental line logging. Result.Output is
	// always populated regardless.
	SuppressOutput bool

	// Interactive attaches the subprocess directly to the controlling
	// terminal with no capture. Host target only.
	Interactive bool

	// Env is extra KEY=VALUE pairs injected into the command's
	// environment.
	Env []string
}

// DefaultOptions returns the default execution options: errors trigger,
// output is logged incrementally, non-interactive.
func DefaultOptions() Options {
	return Options{TriggerError: true}
}

// ansiPattern matches ANSI/VT100 escape sequences (CSI sequences, cursor
// movement, color codes) so captured output stays grep-able.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\][^\x07]*\x07|\x1b[@-_]`)

// StripANSI removes terminal control codes from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
