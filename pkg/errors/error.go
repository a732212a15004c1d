// Package errors provides coded errors for the backtester.
//
// Codes are grouped by the layer that raises them:
//   - General (1-99)
//   - Validation (100-199): bad parameters and configuration
//   - Data (200-299): tick loading and data source failures
//   - Indicator (300-399)
//   - Strategy (400-499): strategy construction, registration and versioning
//   - Position (500-599): fill and position bookkeeping
//   - Backtest (600-699): engine lifecycle and result output
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeNoTickData, "no ticks for symbol %s", symbol)
//	if errors.HasCode(err, errors.ErrCodeNoTickData) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is an error carrying an ErrorCode and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is forwards to the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to the standard library errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the first *Error in err's chain,
// or ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError is returned when a calculation needs more samples
// than it was given.
type InsufficientDataError struct {
	Required int
	Actual   int
	Message  string
}

func NewInsufficientDataError(required, actual int, message string) *InsufficientDataError {
	return &InsufficientDataError{Required: required, Actual: actual, Message: message}
}

func NewInsufficientDataErrorf(required, actual int, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{Required: required, Actual: actual, Message: fmt.Sprintf(format, args...)}
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s (required %d, got %d)", e.Message, e.Required, e.Actual)
}

func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
