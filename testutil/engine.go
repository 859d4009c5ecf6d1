package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/kbukum/rchttp/httpclient"
)

// Session names recorded on each request.
const (
	SessionShared    = "shared"
	SessionEphemeral = "ephemeral"
)

// Handler produces the engine result for one request.
type Handler func(req *http.Request) (*http.Response, error)

// RecordedRequest is a request as the engine received it.
type RecordedRequest struct {
	Session string
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
}

// Engine is a scriptable httpclient.Engine. Queued handlers answer requests
// in order; once the queue is empty the fallback answers.
type Engine struct {
	mu       sync.Mutex
	queue    []Handler
	fallback Handler
	requests []RecordedRequest
	received chan struct{}
}

var _ httpclient.Engine = (*Engine)(nil)

// NewEngine creates an engine that answers 200 with an empty body by default.
func NewEngine() *Engine {
	return &Engine{
		fallback: Respond(http.StatusOK, ""),
		received: make(chan struct{}, 1024),
	}
}

// Shared returns the session GET requests use by default.
func (e *Engine) Shared() httpclient.Doer {
	return &doer{engine: e, session: SessionShared}
}

// Ephemeral returns the session other methods use by default.
func (e *Engine) Ephemeral() httpclient.Doer {
	return &doer{engine: e, session: SessionEphemeral}
}

// Enqueue appends handlers to answer the next requests.
func (e *Engine) Enqueue(handlers ...Handler) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, handlers...)
	return e
}

// SetFallback sets the handler used when the queue is empty.
func (e *Engine) SetFallback(h Handler) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = h
	return e
}

// Requests returns a copy of every recorded request.
func (e *Engine) Requests() []RecordedRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]RecordedRequest, len(e.requests))
	copy(out, e.requests)
	return out
}

// LastRequest returns the most recent request.
func (e *Engine) LastRequest() (RecordedRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		return RecordedRequest{}, false
	}
	return e.requests[len(e.requests)-1], true
}

// Received signals once per request reaching the engine.
func (e *Engine) Received() <-chan struct{} {
	return e.received
}

// Reset clears recorded requests and queued handlers.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = nil
	e.requests = nil
}

func (e *Engine) next(rec RecordedRequest) Handler {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, rec)
	if len(e.queue) == 0 {
		return e.fallback
	}
	h := e.queue[0]
	e.queue = e.queue[1:]
	return h
}

type doer struct {
	engine  *Engine
	session string
}

func (d *doer) Do(req *http.Request) (*http.Response, error) {
	rec := RecordedRequest{
		Session: d.session,
		Method:  req.Method,
		URL:     req.URL.String(),
		Header:  req.Header.Clone(),
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		rec.Body = body
	}

	h := d.engine.next(rec)
	select {
	case d.engine.received <- struct{}{}:
	default:
	}
	return h(req)
}

// Respond answers with status and body. Extra arguments are header
// key-value pairs.
func Respond(status int, body string, headerKVs ...string) Handler {
	return func(req *http.Request) (*http.Response, error) {
		h := make(http.Header)
		for i := 0; i+1 < len(headerKVs); i += 2 {
			h.Add(headerKVs[i], headerKVs[i+1])
		}
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Header:     h,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Request:    req,
		}, nil
	}
}

// RespondJSON answers with status and v encoded as JSON.
func RespondJSON(status int, v any) Handler {
	data, err := json.Marshal(v)
	if err != nil {
		return Fail(err)
	}
	return Respond(status, string(data), "Content-Type", "application/json")
}

// RespondNil answers with neither a response nor an error.
func RespondNil() Handler {
	return func(*http.Request) (*http.Response, error) {
		return nil, nil
	}
}

// RespondNilBody answers with a response whose Body is nil.
func RespondNilBody(status int) Handler {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: status, Header: make(http.Header), Request: req}, nil
	}
}

// Fail answers with err.
func Fail(err error) Handler {
	return func(*http.Request) (*http.Response, error) {
		return nil, err
	}
}

// Hold blocks until release is closed or the request context ends. On
// release it delegates to next; otherwise it returns the context error.
func Hold(release <-chan struct{}, next Handler) Handler {
	return func(req *http.Request) (*http.Response, error) {
		select {
		case <-release:
			return next(req)
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
}
