package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Client configuration errors
const (
	// ErrCodeConfiguration indicates a missing or invalid client configuration,
	// such as an unparseable base URL.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeValidation indicates a struct failed tag-based validation.
	ErrCodeValidation ErrorCode = "VALIDATION_FAILED"
)

// Request construction errors
const (
	// ErrCodeURLResolution indicates a path could not be resolved against the base URL.
	ErrCodeURLResolution ErrorCode = "URL_RESOLUTION_ERROR"
	// ErrCodeEncoding indicates the request body could not be encoded.
	ErrCodeEncoding ErrorCode = "ENCODING_ERROR"
)

// Transport errors
const (
	// ErrCodeTransport indicates a network or engine-level failure.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeTimeout indicates the request exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeCanceled indicates the caller's context ended before completion.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeEmptyResponse indicates the engine reported success without a
	// response or without a body.
	ErrCodeEmptyResponse ErrorCode = "EMPTY_RESPONSE"
)

// HTTP status classification
const (
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeServer       ErrorCode = "SERVER_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport:   true,
	ErrCodeTimeout:     true,
	ErrCodeRateLimited: true,
	ErrCodeServer:      true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
