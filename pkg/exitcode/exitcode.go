// Package exitcode provides standardized exit codes for sitegen
package exitcode

import (
	"errors"
	"fmt"
)

// Exit codes for the sitegen CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	ValidationError = 3
	FileSystemError = 4
	ToolNotFound    = 9
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case ToolNotFound:
		return "Tool not found"
	default:
		return "Unknown error"
	}
}

// Error attaches an exit code to an underlying error.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err tagged with code, or nil when err is nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Wrapf formats a message, wraps err with %w and tags it with code.
func Wrapf(code int, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: fmt.Errorf(format+": %w", append(args, err)...)}
}

// From extracts the exit code carried by err, defaulting to GeneralError.
func From(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return GeneralError
}
