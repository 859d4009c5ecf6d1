package httpclient

import (
	"encoding/json"
	"net/http"
	"net/url"
	"unicode/utf8"

	apperrors "github.com/kbukum/rchttp/errors"
)

// SuccessFunc receives the response of a completed request.
type SuccessFunc func(resp *Response)

// FailureFunc receives the error of a failed request.
type FailureFunc func(err error)

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, etc).
	Method string
	// Path is joined onto the client's base URL and percent-decoded.
	Path string
	// Headers are applied last and override every default of the same name.
	Headers map[string]string
	// Params is encoded as indented JSON and sent as the body.
	Params map[string]any
	// Multipart is encoded as multipart/form-data and takes precedence over Params and Body.
	Multipart *MultipartBody
	// Body is sent as-is when Params and Multipart are nil.
	Body []byte
	// ContentType replaces the application/json default when set.
	ContentType string
	// Session overrides the session chosen from the method.
	Session Session

	// target bypasses path resolution.
	target *url.URL
}

// Response is the result of a completed request. Non-2xx statuses are still
// delivered as responses; use Err to classify them.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Header holds the response headers.
	Header http.Header
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// Err returns the AppError for a 4xx or 5xx status, nil otherwise.
func (r *Response) Err() error {
	if e := apperrors.FromStatus(r.StatusCode, r.Body); e != nil {
		return e
	}
	return nil
}

// Text returns the body as a string, or "" when it is not valid UTF-8.
func (r *Response) Text() string {
	return textOf(r.Body)
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apperrors.New(apperrors.ErrCodeEncoding, "response body is not valid JSON").WithCause(err)
	}
	return nil
}

func textOf(b []byte) string {
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}
