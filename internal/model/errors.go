package model

import "fmt"

// ExitCode defines the process exit codes used by the CLI. Scripts and CI
// systems distinguish user mistakes from infrastructure failures by code.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitSystemError indicates an infrastructure failure: a subprocess
	// exited non-zero, the container runtime API failed, or no shell was
	// found inside a container.
	ExitSystemError ExitCode = 1

	// ExitUserError indicates recoverable user input problems: a bad
	// version string, an unparsable KEY=VALUE pair, a missing library, or
	// an invalid module selection.
	ExitUserError ExitCode = 2
)

// UserError is a recoverable error caused by user input or configuration.
// It is reported as a short message with an optional hint, exits with
// ExitUserError, and never shows a cause chain.
type UserError struct {
	// Message is the short, user-facing description of what was wrong.
	Message string

	// Hint optionally tells the user how to fix the problem.
	Hint string
}

// Error satisfies the error interface.
func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a UserError without a hint.
func NewUserError(format string, args ...interface{}) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// NewUserErrorHint creates a UserError with a remediation hint.
func NewUserErrorHint(hint, format string, args ...interface{}) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...), Hint: hint}
}

// SystemError is an infrastructure failure. It carries the underlying
// cause, exits with ExitSystemError, and the cause chain is shown only in
// verbose mode.
type SystemError struct {
	// Message describes the failed operation.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error satisfies the error interface. The cause is included so that
// wrapped errors remain inspectable via errors.Is/As even though the CLI
// boundary may choose to print only Message.
func (e *SystemError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *SystemError) Unwrap() error {
	return e.Err
}

// NewSystemError creates a SystemError without a cause.
func NewSystemError(format string, args ...interface{}) *SystemError {
	return &SystemError{Message: fmt.Sprintf(format, args...)}
}

// WrapSystemError creates a SystemError wrapping an underlying cause.
func WrapSystemError(err error, format string, args ...interface{}) *SystemError {
	return &SystemError{Message: fmt.Sprintf(format, args...), Err: err}
}
