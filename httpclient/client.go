package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/rchttp/errors"
	"github.com/kbukum/rchttp/logger"
	"github.com/kbukum/rchttp/observability"
	"github.com/kbukum/rchttp/version"
)

const componentName = "httpclient"

// Client dispatches callback-style HTTP requests against a base URL.
// It is safe for concurrent use.
type Client struct {
	config  Config
	engine  Engine
	log     *logger.Logger
	metrics *observability.Metrics
	logging atomic.Bool

	mu     sync.Mutex
	base   *url.URL
	token  string
	calls  map[string]*Call
	last   *Call
	closed bool
	wg     sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithEngine replaces the net/http engine.
func WithEngine(e Engine) Option {
	return func(c *Client) { c.engine = e }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records request metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client. An invalid BaseURL returns a CONFIGURATION_ERROR.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config: cfg,
		calls:  make(map[string]*Call),
	}
	for _, opt := range opts {
		opt(c)
	}

	if cfg.BaseURL != "" {
		base, err := parseBaseURL(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		c.base = base
	}
	if c.engine == nil {
		engine, err := NewEngine(cfg.Timeout)
		if err != nil {
			return nil, apperrors.Configuration("creating http engine").WithCause(err)
		}
		c.engine = engine
	}
	if c.log == nil {
		c.log = logger.Get(componentName + "." + cfg.Name)
	}
	if cfg.Username != "" || cfg.Password != "" {
		c.token = basicToken(cfg.Username, cfg.Password)
	}
	c.logging.Store(!cfg.DisableLogging)

	return c, nil
}

// Name returns the configured client name.
func (c *Client) Name() string { return c.config.Name }

// SetBaseURL replaces the base URL for subsequent requests.
func (c *Client) SetBaseURL(raw string) error {
	base, err := parseBaseURL(raw)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.base = base
	c.mu.Unlock()
	return nil
}

// BaseURL returns the current base URL, or "" when none is set.
func (c *Client) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.base == nil {
		return ""
	}
	return c.base.String()
}

// SetLoggingEnabled toggles request and response diagnostics.
func (c *Client) SetLoggingEnabled(enabled bool) {
	c.logging.Store(enabled)
}

// LoggingEnabled reports whether diagnostics are on.
func (c *Client) LoggingEnabled() bool {
	return c.logging.Load()
}

// Get dispatches a GET request on the shared session.
func (c *Client) Get(ctx context.Context, path string, headers map[string]string, onSuccess SuccessFunc, onFailure FailureFunc) *Call {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Headers: headers}, onSuccess, onFailure)
}

// Post dispatches a POST request with params encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, params map[string]any, headers map[string]string, onSuccess SuccessFunc, onFailure FailureFunc) *Call {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Params: params, Headers: headers}, onSuccess, onFailure)
}

// Put dispatches a PUT request with params encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, params map[string]any, headers map[string]string, onSuccess SuccessFunc, onFailure FailureFunc) *Call {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Params: params, Headers: headers}, onSuccess, onFailure)
}

// Delete dispatches a DELETE request. Params, when given, are sent as a JSON body.
func (c *Client) Delete(ctx context.Context, path string, params map[string]any, headers map[string]string, onSuccess SuccessFunc, onFailure FailureFunc) *Call {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Params: params, Headers: headers}, onSuccess, onFailure)
}

// Do dispatches req and returns immediately. Exactly one of onSuccess or
// onFailure runs on the call's goroutine unless the call is canceled first.
// Either callback may be nil.
func (c *Client) Do(ctx context.Context, req Request, onSuccess SuccessFunc, onFailure FailureFunc) *Call {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	call := newCall(ctx, req.Method)
	session := req.Session.resolve(req.Method)

	c.mu.Lock()
	st := state{
		base:      c.base,
		token:     c.token,
		userAgent: c.userAgent(),
		headers:   c.config.Headers,
	}
	closed := c.closed
	if !closed {
		c.calls[call.id] = call
		c.last = call
		call.tracked = true
		c.wg.Add(1)
	}
	c.mu.Unlock()

	reqCtx := logger.ContextWithCallID(call.ctx, call.id)
	reqCtx, span := observability.StartClientSpan(reqCtx, req.Method, call.id, session.String())
	if sc := span.SpanContext(); sc.IsValid() {
		reqCtx = logger.ContextWithTrace(reqCtx, sc.TraceID().String(), sc.SpanID().String())
	}

	ex := &exchange{
		call:      call,
		parent:    ctx,
		ctx:       reqCtx,
		span:      span,
		session:   session,
		onSuccess: onSuccess,
		onFailure: onFailure,
	}
	if closed {
		ex.err = apperrors.Configuration("client is closed")
	} else {
		ex.req, ex.body, ex.err = buildRequest(reqCtx, st, req)
	}
	if ex.req != nil {
		observability.SetSpanURL(span, ex.req.URL.String())
	}

	go c.run(ex)
	return call
}

func (c *Client) userAgent() string {
	if c.config.UserAgent != "" {
		return c.config.UserAgent
	}
	return version.UserAgent()
}

// Cancel cancels the most recently dispatched call if it is still pending.
// It reports whether a call was canceled.
func (c *Client) Cancel() bool {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	if last == nil {
		return false
	}
	return last.Cancel()
}

// CancelAll cancels every pending call and returns how many were canceled.
func (c *Client) CancelAll() int {
	c.mu.Lock()
	pending := make([]*Call, 0, len(c.calls))
	for _, call := range c.calls {
		pending = append(pending, call)
	}
	c.mu.Unlock()

	n := 0
	for _, call := range pending {
		if call.Cancel() {
			n++
		}
	}
	return n
}

// Pending returns the number of calls that have not finished.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Close rejects new calls, cancels pending ones and waits until each has
// either been canceled or handed to its callback, or ctx ends. It does not
// wait for callbacks to return, so it is safe to call from one.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.CancelAll()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if closer, ok := c.engine.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
	return nil
}

// IsClosed reports whether Close has been called.
func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// exchange carries one call from dispatch to completion.
type exchange struct {
	call    *Call
	parent  context.Context
	ctx     context.Context
	span    trace.Span
	session Session

	req  *http.Request
	body []byte
	err  error

	onSuccess SuccessFunc
	onFailure FailureFunc
}

func (c *Client) run(ex *exchange) {
	defer c.release(ex.call)

	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordRequestStart(ex.ctx, c.config.Name)
	}

	if ex.err != nil {
		c.complete(ex, nil, ex.err, start)
		return
	}

	c.logRequest(ex)

	doer := c.engine.Shared()
	if ex.session == SessionEphemeral {
		doer = c.engine.Ephemeral()
	}
	resp, err := readResponse(doer.Do(ex.req))
	c.complete(ex, resp, err, start)
}

// readResponse drains the engine result. A missing response or body without
// an error becomes EMPTY_RESPONSE.
func readResponse(resp *http.Response, err error) (*Response, error) {
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}
	if resp == nil {
		return nil, apperrors.EmptyResponse("engine returned no response")
	}
	if resp.Body == nil {
		return nil, apperrors.EmptyResponse("engine returned no response body")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// classifyError maps an engine error onto an AppError.
func classifyError(parent context.Context, err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return apperrors.Timeout(err)
	case errors.Is(err, context.Canceled), parent.Err() != nil:
		return apperrors.Canceled(err)
	default:
		return apperrors.Transport(err)
	}
}

func (c *Client) complete(ex *exchange, resp *Response, err error, start time.Time) {
	duration := time.Since(start)
	method := ex.call.method

	if err != nil {
		appErr := classifyError(ex.parent, err)
		c.logFailure(ex, appErr, duration)
		delivered := ex.call.deliver(func() {
			c.untrack(ex.call)
			if ex.onFailure != nil {
				ex.onFailure(appErr)
			}
		})
		outcome := observability.OutcomeFailure
		if !delivered {
			outcome = observability.OutcomeCanceled
		} else if c.metrics != nil {
			c.metrics.RecordError(ex.ctx, c.config.Name, string(appErr.Code))
		}
		c.record(ex, method, outcome, 0, duration)
		observability.EndClientSpan(ex.span, 0, string(appErr.Code), appErr)
		return
	}

	c.logResponse(ex, resp, duration)
	delivered := ex.call.deliver(func() {
		c.untrack(ex.call)
		if ex.onSuccess != nil {
			ex.onSuccess(resp)
		}
	})
	outcome := observability.OutcomeSuccess
	if !delivered {
		outcome = observability.OutcomeCanceled
	}
	c.record(ex, method, outcome, resp.StatusCode, duration)
	observability.EndClientSpan(ex.span, resp.StatusCode, "", nil)
}

func (c *Client) record(ex *exchange, method, outcome string, status int, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordRequestEnd(ex.ctx, c.config.Name, method, outcome, status, d)
}

// untrack removes call from the pending set and lets Close stop waiting for
// it. It runs before the user callback so a callback may call Close.
func (c *Client) untrack(call *Call) {
	c.mu.Lock()
	if !call.tracked || call.released {
		c.mu.Unlock()
		return
	}
	call.released = true
	delete(c.calls, call.id)
	if c.last == call {
		c.last = nil
	}
	c.mu.Unlock()
	c.wg.Done()
}

// release untracks a finished call and unblocks its waiters.
func (c *Client) release(call *Call) {
	c.untrack(call)
	call.finish()
}

func (c *Client) logRequest(ex *exchange) {
	if !c.logging.Load() {
		return
	}
	c.log.WithContext(ex.ctx).Info("http request", logger.Fields(
		logger.FieldMethod, ex.req.Method,
		logger.FieldURL, ex.req.URL.String(),
		logger.FieldSession, ex.session.String(),
		logger.FieldHeaders, redactHeaders(ex.req.Header),
		logger.FieldBody, textOf(ex.body),
	))
}

func (c *Client) logResponse(ex *exchange, resp *Response, d time.Duration) {
	if !c.logging.Load() {
		return
	}
	log := c.log.WithContext(ex.ctx)
	log.Info("http response", logger.MergeWithDuration(logger.Fields(
		logger.FieldMethod, ex.req.Method,
		logger.FieldURL, ex.req.URL.String(),
		logger.FieldStatusCode, resp.StatusCode,
		logger.FieldHeaders, redactHeaders(resp.Header),
	), d))
	log.Info("http response body", logger.Fields(logger.FieldBody, resp.Text()))
}

func (c *Client) logFailure(ex *exchange, appErr *apperrors.AppError, d time.Duration) {
	if !c.logging.Load() {
		return
	}
	fields := logger.MergeWithDuration(logger.ErrorFields(ex.call.method, appErr), d)
	fields[logger.FieldErrorCode] = string(appErr.Code)
	if ex.req != nil {
		fields[logger.FieldURL] = ex.req.URL.String()
	}
	c.log.WithContext(ex.ctx).Warn("http request failed", fields)
}
