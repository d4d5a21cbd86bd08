package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type surfaced by every speechkit operation.
type AppError struct {
	// Code is the machine-readable error kind.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for diagnostics.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// ConnectionIncompatible reports that backend cannot perform capability.
func ConnectionIncompatible(backend, capability string) *AppError {
	return &AppError{
		Code:    ErrCodeConnectionIncompatible,
		Message: fmt.Sprintf("The %s connection does not support %s.", backend, capability),
		Details: map[string]any{"backend": backend, "capability": capability},
	}
}

// Transcription creates an error for a failed speech-to-text operation.
func Transcription(message string) *AppError {
	return &AppError{Code: ErrCodeTranscription, Message: message}
}

// Generation creates an error for a failed text-to-speech operation.
func Generation(message string) *AppError {
	return &AppError{Code: ErrCodeGeneration, Message: message}
}

// AudioFormatNotSupported creates an error naming the rejected format and the
// formats that are currently available.
func AudioFormatNotSupported(format string, available []string) *AppError {
	msg := fmt.Sprintf("%s format is not supported.", strings.ToUpper(format))
	if len(available) > 0 {
		msg += " Available formats: " + strings.Join(available, ", ")
	}
	return &AppError{
		Code:    ErrCodeAudioFormatNotSupported,
		Message: msg,
		Details: map[string]any{"format": format, "available": available},
	}
}

// ModelSetupFailure creates an error for a model that could not be prepared.
func ModelSetupFailure(source string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeModelSetupFailure,
		Message: fmt.Sprintf("Unable to set up model from %s.", source),
		Details: map[string]any{"source": source},
		Cause:   cause,
	}
}

// Timeout creates a new AppError for an operation that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// Validation creates a new AppError for invalid options or configuration.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Wrap returns err unchanged when it already is an AppError, otherwise it
// wraps err into a new AppError of the given code.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return New(code, message).WithCause(err)
}
