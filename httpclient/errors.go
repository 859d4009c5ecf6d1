package httpclient

import (
	apperrors "github.com/kbukum/rchttp/errors"
)

// IsConfiguration checks if an error is a CONFIGURATION_ERROR.
func IsConfiguration(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeConfiguration)
}

// IsURLResolution checks if an error is a URL_RESOLUTION_ERROR.
func IsURLResolution(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeURLResolution)
}

// IsEncoding checks if an error is an ENCODING_ERROR.
func IsEncoding(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeEncoding)
}

// IsTransport checks if an error is a TRANSPORT_ERROR.
func IsTransport(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeTransport)
}

// IsTimeout checks if an error is a TIMEOUT.
func IsTimeout(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeTimeout)
}

// IsCanceled checks if an error is CANCELED.
func IsCanceled(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeCanceled)
}

// IsEmptyResponse checks if an error is an EMPTY_RESPONSE.
func IsEmptyResponse(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeEmptyResponse)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	return ok && appErr.Retryable
}

// ClassifyStatusCode converts an HTTP status code into an AppError.
// Returns nil for statuses below 400.
func ClassifyStatusCode(statusCode int, body []byte) error {
	if e := apperrors.FromStatus(statusCode, body); e != nil {
		return e
	}
	return nil
}
