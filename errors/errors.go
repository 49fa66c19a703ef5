package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried on a new stream.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
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

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

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

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// --- Common Error Constructors ---

// Destroyed creates an error for an operation on a destroyed stream.
func Destroyed(op string) *AppError {
	return &AppError{
		Code: ErrCodeDestroyed, Message: fmt.Sprintf("cannot %s after stream was destroyed", op),
		Details: map[string]any{"operation": op},
	}
}

// PrematureClose creates an error for a stream torn down before it ended.
func PrematureClose() *AppError {
	return &AppError{
		Code: ErrCodePrematureClose, Message: "stream closed before end of data",
		Retryable: true,
	}
}

// WriteAfterEnd creates an error for a write issued after End.
func WriteAfterEnd() *AppError {
	return &AppError{Code: ErrCodeWriteAfterEnd, Message: "write after end"}
}

// PushAfterEOF creates an error for a push issued after the readable side ended.
func PushAfterEOF() *AppError {
	return &AppError{Code: ErrCodePushAfterEOF, Message: "push after end of readable"}
}

// NullChunk creates an error for a nil chunk.
func NullChunk() *AppError {
	return &AppError{Code: ErrCodeNullChunk, Message: "may not write nil chunks to a stream"}
}

// InvalidChunk creates an error for a chunk of the wrong type.
func InvalidChunk(chunk any) *AppError {
	return &AppError{
		Code: ErrCodeInvalidChunk, Message: fmt.Sprintf("chunk must be []byte or string in byte mode, got %T", chunk),
		Details: map[string]any{"type": fmt.Sprintf("%T", chunk)},
	}
}

// MultipleCallback creates an error for a completion callback invoked twice.
func MultipleCallback(step string) *AppError {
	return &AppError{
		Code: ErrCodeMultipleCallback, Message: fmt.Sprintf("%s callback called multiple times", step),
		Details: map[string]any{"step": step},
	}
}

// InvalidConfig creates an error for an invalid configuration field.
func InvalidConfig(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid configuration: %s", reason),
		Details: details,
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred",
		Cause: cause,
	}
}
