package output

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
)

// ExitError is an error that carries a process exit code.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError reports a problem the operator can fix by changing input
// or configuration.
func NewUserError(message string) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message}
}

// NewUserErrorf is NewUserError with formatting.
func NewUserErrorf(format string, args ...any) *ExitError {
	return NewUserError(fmt.Sprintf(format, args...))
}

// WrapUserError marks cause as a user error, keeping its message. A cause
// that already carries an exit code is returned unchanged.
func WrapUserError(cause error) *ExitError {
	var exitErr *ExitError
	if errors.As(cause, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitUserError, Message: cause.Error(), Cause: cause}
}

// NewSystemError reports a failure outside the operator's input.
func NewSystemError(message string) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message}
}

// NewSystemErrorWithCause is NewSystemError wrapping cause. The cause's
// text is appended to the message.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	if cause != nil {
		message = message + ": " + cause.Error()
	}
	return &ExitError{Code: ExitSystemError, Message: message, Cause: cause}
}

// GetExitCode maps err to a process exit code. Untyped errors are user errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUserError
}
