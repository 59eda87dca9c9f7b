// Package errors carries coded errors for the operational layers:
// configuration loading and schema migration. Planning failures use the
// sentinel taxonomy in domain/core instead.
package errors

import (
	"fmt"
)

// Operational error codes. Stable: wrapper scripts match on them.
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeMigrationFailed = "MIGRATION_FAILED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// AppError is a coded operational error with an optional cause
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a coded error without a cause
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap layers context onto err. A coded cause keeps its code; anything
// else becomes INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternalError
	if appErr, ok := err.(*AppError); ok {
		code = appErr.Code
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error's code, or UNKNOWN for uncoded errors
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// ConfigInvalid reports configuration that cannot be used
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// MigrationFailed reports a schema bootstrap failure
func MigrationFailed(err error, message string) *AppError {
	return &AppError{
		Code:    CodeMigrationFailed,
		Message: message,
		Cause:   err,
	}
}
