package httpclient

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	apperrors "github.com/kbukum/rchttp/errors"
)

// UploadFunc receives the outcome of an Upload as a generic mapping.
type UploadFunc func(result map[string]any)

// Upload posts data as the raw body to the base URL itself, without joining
// a path, with Content-Type application/x-www-form-urlencoded on an
// ephemeral session. filename is sent in a Content-Disposition header.
//
// onComplete receives the decoded JSON object of a response with status
// below 400, or {"status": code, "body": text} when the body is not a JSON
// object. onError receives the AppError mapping for transport failures and
// for statuses of 400 and above.
func (c *Client) Upload(ctx context.Context, data []byte, filename string, onComplete, onError UploadFunc) *Call {
	req := Request{
		Method:      http.MethodPost,
		Body:        data,
		ContentType: contentTypeForm,
		Session:     SessionEphemeral,
	}
	if data == nil {
		req.Body = []byte{}
	}
	if filename != "" {
		req.Headers = map[string]string{
			"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": filename}),
		}
	}

	c.mu.Lock()
	if c.base != nil {
		target := *c.base
		req.target = &target
	}
	c.mu.Unlock()

	onSuccess := func(resp *Response) {
		if err := resp.Err(); err != nil {
			if onError != nil {
				onError(errorMap(err))
			}
			return
		}
		if onComplete != nil {
			onComplete(uploadResult(resp))
		}
	}
	onFailure := func(err error) {
		if onError != nil {
			onError(errorMap(err))
		}
	}
	return c.Do(ctx, req, onSuccess, onFailure)
}

// UploadMultipart posts body as multipart/form-data to path.
func (c *Client) UploadMultipart(ctx context.Context, path string, body *MultipartBody, headers map[string]string, onSuccess SuccessFunc, onFailure FailureFunc) *Call {
	return c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      path,
		Multipart: body,
		Headers:   headers,
	}, onSuccess, onFailure)
}

func uploadResult(resp *Response) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(resp.Body, &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{
		"status": resp.StatusCode,
		"body":   resp.Text(),
	}
}

func errorMap(err error) map[string]any {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.ToMap()
	}
	return apperrors.Transport(err).ToMap()
}
