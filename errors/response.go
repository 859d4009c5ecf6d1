package errors

import (
	stderrors "errors"
)

// ToMap flattens the error into a plain map, the shape handed to
// dictionary-style error callbacks.
func (e *AppError) ToMap() map[string]any {
	m := map[string]any{
		"code":      string(e.Code),
		"message":   e.Message,
		"retryable": e.Retryable,
	}
	if e.HTTPStatus != 0 {
		m["status"] = e.HTTPStatus
	}
	if e.Cause != nil {
		m["cause"] = e.Cause.Error()
	}
	for k, v := range e.Details {
		if _, taken := m[k]; !taken {
			m[k] = v
		}
	}
	return m
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

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
