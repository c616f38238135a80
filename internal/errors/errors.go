// Package errors provides structured error types and exit codes for iograder.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI. Grading outcomes never change the exit
// code; only CLI misuse does.
const (
	ExitSuccess     = 0 // Success (including failed or errored grades)
	ExitConfigError = 2 // Invalid flags or unreadable configuration files
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindSetup
	KindTimeout
	KindExecution
	KindConfig
)

// String returns a short name for the kind, used in debug logs.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSetup:
		return "setup"
	case KindTimeout:
		return "timeout"
	case KindExecution:
		return "execution"
	case KindConfig:
		return "config"
	default:
		return "internal"
	}
}

// GraderError is the base error type for iograder.
type GraderError struct {
	Kind    ErrorKind
	Message string
	Cause   error // Underlying error
}

// Error returns the message alone. Messages end up verbatim in result
// records, so the cause is not appended.
func (e *GraderError) Error() string {
	return e.Message
}

func (e *GraderError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *GraderError) ExitCode() int {
	if e.Kind == KindConfig {
		return ExitConfigError
	}
	return ExitSuccess
}

// Validation creates an input validation error.
func Validation(message string) *GraderError {
	return &GraderError{
		Kind:    KindValidation,
		Message: message,
	}
}

// Validationf creates an input validation error with formatting.
func Validationf(format string, args ...interface{}) *GraderError {
	return Validation(fmt.Sprintf(format, args...))
}

// Setup wraps a failed or timed-out setup command.
func Setup(message string, cause error) *GraderError {
	return &GraderError{
		Kind:    KindSetup,
		Message: message,
		Cause:   cause,
	}
}

// Timeout creates a command timeout error.
func Timeout(message string) *GraderError {
	return &GraderError{
		Kind:    KindTimeout,
		Message: message,
	}
}

// Execution creates a command failure error.
func Execution(message string, cause error) *GraderError {
	return &GraderError{
		Kind:    KindExecution,
		Message: message,
		Cause:   cause,
	}
}

// Internal creates an internal error.
func Internal(message string) *GraderError {
	return &GraderError{
		Kind:    KindInternal,
		Message: message,
	}
}

// Internalf creates an internal error with formatting.
func Internalf(format string, args ...interface{}) *GraderError {
	return Internal(fmt.Sprintf(format, args...))
}

// Wrap wraps an error as an internal error, keeping its text as the message.
func Wrap(err error) *GraderError {
	return &GraderError{
		Kind:    KindInternal,
		Message: err.Error(),
		Cause:   err,
	}
}

// Config creates a CLI configuration error.
func Config(message string) *GraderError {
	return &GraderError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a CLI configuration error with formatting.
func Configf(format string, args ...interface{}) *GraderError {
	return Config(fmt.Sprintf(format, args...))
}

// KindOf returns the kind of err, or KindInternal if err is not a GraderError.
func KindOf(err error) ErrorKind {
	var ge *GraderError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ge *GraderError
	if errors.As(err, &ge) {
		return ge.ExitCode()
	}
	return ExitSuccess
}
