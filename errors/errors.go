// Package errors provides the structured error type shared by rchttp packages.
// Every failure delivered to a failure callback is an *AppError carrying a
// machine-readable code, a retryable hint and, for HTTP status errors, the
// status code that produced it.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the response status that produced this error, 0 for
	// errors raised before a response was received.
	HTTPStatus int `json:"status,omitempty"`
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

// --- Common Error Constructors ---

// Configuration creates an error for a missing or invalid client setting.
func Configuration(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// Validation creates an error for a struct that failed validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// URLResolution creates an error for a path that did not resolve to a valid URL.
func URLResolution(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeURLResolution, Message: fmt.Sprintf("cannot resolve %q against the base URL", path),
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// Encoding creates an error for a request body that could not be serialized.
func Encoding(cause error) *AppError {
	return &AppError{Code: ErrCodeEncoding, Message: "request body could not be encoded", Cause: cause}
}

// Transport creates an error for a failure inside the HTTP engine.
func Transport(cause error) *AppError {
	return &AppError{Code: ErrCodeTransport, Message: "transport failure", Retryable: true, Cause: cause}
}

// Timeout creates an error for a request that ran past its deadline.
func Timeout(cause error) *AppError {
	return &AppError{Code: ErrCodeTimeout, Message: "request timed out", Retryable: true, Cause: cause}
}

// Canceled creates an error for a request whose parent context was canceled.
func Canceled(cause error) *AppError {
	return &AppError{Code: ErrCodeCanceled, Message: "request canceled", Cause: cause}
}

// EmptyResponse creates an error for an engine result that carried neither
// an error nor usable response data.
func EmptyResponse(reason string) *AppError {
	return &AppError{Code: ErrCodeEmptyResponse, Message: reason}
}

// FromStatus converts a non-2xx HTTP status into an AppError.
// Returns nil for 1xx-3xx statuses.
func FromStatus(status int, body []byte) *AppError {
	if status < http.StatusBadRequest {
		return nil
	}

	var code ErrorCode
	switch {
	case status == http.StatusUnauthorized:
		code = ErrCodeUnauthorized
	case status == http.StatusForbidden:
		code = ErrCodeForbidden
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		code = ErrCodeRateLimited
	case status >= http.StatusInternalServerError:
		code = ErrCodeServer
	default:
		code = ErrCodeBadRequest
	}

	e := &AppError{
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d %s", status, http.StatusText(status)),
		HTTPStatus: status,
		Retryable:  IsRetryableCode(code),
	}
	if len(body) > 0 {
		e.Details = map[string]any{"body": string(body)}
	}
	return e
}
