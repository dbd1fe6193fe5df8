// Package apperr is the structured error taxonomy: input
// errors, numeric errors, and programmer errors, each carrying a coded
// AppError (Wrap, Wrapf, WithCode, coded constructors) so callers can
// branch on failure kind without string matching.
package apperr

import (
	"fmt"
)

// AppError is a structured application error with a stable code, a
// human-readable message, and an optional wrapped cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{Code: appErr.Code, Message: message, Cause: appErr}
	}
	return &AppError{Code: CodeInternalError, Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Error codes. Input/numeric errors inside analyses surface as
// <analysis>_error result fields; programmer errors (unknown analysis/step) are
// returned to the caller as plain Go errors and are expected to fail loud.
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeWindowOutOfRange   = "WINDOW_OUT_OF_RANGE"
	CodeInsufficientData   = "INSUFFICIENT_DATA"
	CodeFitFailed          = "FIT_FAILED"
	CodeSingularRegression = "SINGULAR_REGRESSION"
	CodeZeroVariance       = "ZERO_VARIANCE"
	CodeUnknownAnalysis    = "UNKNOWN_ANALYSIS"
	CodeUnknownStep        = "UNKNOWN_PIPELINE_STEP"
	CodeMissingParameter   = "MISSING_PARAMETER"
	CodeLoaderError        = "LOADER_ERROR"
)

func ConfigInvalid(message string) *AppError { return New(CodeConfigInvalid, message) }

func InvalidInput(message string) *AppError { return New(CodeInvalidInput, message) }

func WindowOutOfRange(message string) *AppError { return New(CodeWindowOutOfRange, message) }

func InsufficientData(message string) *AppError { return New(CodeInsufficientData, message) }

func FitFailed(message string) *AppError { return New(CodeFitFailed, message) }

func SingularRegression(message string) *AppError { return New(CodeSingularRegression, message) }

func ZeroVariance(message string) *AppError { return New(CodeZeroVariance, message) }

func MissingParameter(name string) *AppError {
	return New(CodeMissingParameter, fmt.Sprintf("missing required parameter %q", name))
}

func InternalError(message string) *AppError { return New(CodeInternalError, message) }

func LoaderError(cause error) *AppError {
	return &AppError{Code: CodeLoaderError, Message: "loader error", Cause: cause}
}
