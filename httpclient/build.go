package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	apperrors "github.com/kbukum/rchttp/errors"
	"github.com/kbukum/rchttp/observability"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	redacted = "[REDACTED]"
)

// parseBaseURL parses raw and requires an absolute URL.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperrors.Configuration(fmt.Sprintf("invalid base URL %q", raw)).WithCause(err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperrors.Configuration(fmt.Sprintf("base URL %q must be absolute", raw))
	}
	return u, nil
}

// resolveURL joins path onto base with exactly one slash between them,
// percent-decodes the joined string and parses it again.
func resolveURL(base *url.URL, path string) (*url.URL, error) {
	joined := base.String()
	if path != "" {
		joined = strings.TrimRight(joined, "/") + "/" + strings.TrimLeft(path, "/")
	}

	decoded, err := url.PathUnescape(joined)
	if err != nil {
		return nil, apperrors.URLResolution(path, err)
	}
	if !utf8.ValidString(decoded) {
		return nil, apperrors.URLResolution(path, fmt.Errorf("%q decodes to invalid UTF-8", joined))
	}
	u, err := url.Parse(decoded)
	if err != nil {
		return nil, apperrors.URLResolution(path, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperrors.URLResolution(path, fmt.Errorf("%q is not an absolute URL", decoded))
	}
	return u, nil
}

// usesJSON reports whether method gets the application/json content type
// even without a body.
func usesJSON(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// encodeParams renders params as two-space indented JSON without HTML
// escaping.
func encodeParams(params map[string]any) ([]byte, error) {
	if params == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(params); err != nil {
		return nil, apperrors.Encoding(err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// state is the client state captured when a request is dispatched.
type state struct {
	base      *url.URL
	token     string
	userAgent string
	headers   map[string]string
}

// buildRequest turns req into an *http.Request bound to ctx. It returns the
// encoded body alongside for logging.
func buildRequest(ctx context.Context, st state, req Request) (*http.Request, []byte, error) {
	target := req.target
	if target == nil {
		if st.base == nil {
			return nil, nil, apperrors.Configuration("base URL is not set")
		}
		u, err := resolveURL(st.base, req.Path)
		if err != nil {
			return nil, nil, err
		}
		target = u
	}

	body, contentType := req.Body, req.ContentType
	switch {
	case req.Multipart != nil:
		encoded, ct, err := req.Multipart.encode()
		if err != nil {
			return nil, nil, apperrors.Encoding(err)
		}
		body, contentType = encoded, ct
	case req.Params != nil:
		encoded, err := encodeParams(req.Params)
		if err != nil {
			return nil, nil, err
		}
		body = encoded
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), reader)
	if err != nil {
		return nil, nil, apperrors.URLResolution(req.Path, err)
	}
	// Keep the decoded form as parsed; String() above may re-encode it.
	httpReq.URL = target

	h := httpReq.Header
	h.Set(headerUserAgent, st.userAgent)
	for k, v := range st.headers {
		h.Set(k, v)
	}
	if st.token != "" {
		h.Set(headerAuthorization, "Basic "+st.token)
	}
	switch {
	case contentType != "":
		h.Set(headerContentType, contentType)
	case usesJSON(req.Method) || req.Params != nil:
		h.Set(headerContentType, contentTypeJSON)
	}
	observability.InjectHeaders(ctx, h)
	for k, v := range req.Headers {
		h.Set(k, v)
	}

	return httpReq, body, nil
}

var sensitiveHeaders = map[string]bool{
	headerAuthorization: true,
	"Cookie":            true,
	"Set-Cookie":        true,
}

// redactHeaders flattens h for logging with credentials masked.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) == 0 {
			continue
		}
		if sensitiveHeaders[http.CanonicalHeaderKey(k)] {
			out[k] = redacted
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}
