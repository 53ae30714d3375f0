package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates that multiplication strategies disagreed.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCapacity = 5   // Indicates an argument or exponent capacity overflow.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ErrCapacity is the sentinel matched by every CapacityError through errors.Is.
var ErrCapacity = errors.New("capacity exceeded")

// ErrMismatch reports that two multiplication strategies produced different
// products for the same operands.
var ErrMismatch = errors.New("strategy results mismatch")

// ConfigError represents a user configuration error, such as invalid flags or
// values.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// OperationError ties a failure to the series operation that produced it
// ("multiply", "merge", "append"...). The cause stays inspectable with
// errors.Is and errors.As.
type OperationError struct {
	// Op names the series operation.
	Op string
	// Cause is the underlying error.
	Cause error
}

// Error returns the operation name followed by the cause.
func (e OperationError) Error() string { return e.Op + ": " + e.Cause.Error() }

// Unwrap returns the original wrapped error.
func (e OperationError) Unwrap() error { return e.Cause }

// CapacityError reports that a resource with a hard representable bound
// would overflow: the width of an argument vector, or the range of an
// exponent after convolution.
type CapacityError struct {
	// Resource names what overflowed (e.g. "trig arguments").
	Resource string
	// Requested is the size the operation needed.
	Requested int
	// Limit is the maximum representable size.
	Limit int
}

// Error returns a formatted message describing the overflow.
func (e CapacityError) Error() string {
	return fmt.Sprintf("%s: requested %d, limit %d: %v", e.Resource, e.Requested, e.Limit, ErrCapacity)
}

// Is makes every CapacityError match ErrCapacity.
func (e CapacityError) Is(target error) bool { return target == ErrCapacity }

// TimeoutError represents an operation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// MemoryError represents a memory budget exceeded condition. It captures the
// requested, available, and limit memory values for diagnostic purposes.
type MemoryError struct {
	// Requested is the number of bytes the operation needed.
	Requested uint64
	// Available is the number of bytes currently available.
	Available uint64
	// Limit is the configured memory limit in bytes.
	Limit uint64
}

// Error returns a formatted message describing the memory error.
func (e MemoryError) Error() string {
	return fmt.Sprintf("memory error: requested %d bytes, available %d bytes (limit: %d)", e.Requested, e.Available, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error to the process exit status.
//
// Parameters:
//   - err: The error returned by a command, possibly nil.
//
// Returns:
//   - int: One of the Exit* constants.
func ExitCode(err error) int {
	var cfgErr ConfigError
	var timeoutErr TimeoutError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case errors.Is(err, ErrCapacity):
		return ExitErrorCapacity
	case errors.Is(err, ErrMismatch):
		return ExitErrorMismatch
	default:
		return ExitErrorGeneric
	}
}
