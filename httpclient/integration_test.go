package httpclient_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/rchttp/httpclient"
	"github.com/kbukum/rchttp/logger"
	"github.com/kbukum/rchttp/observability"
	"github.com/kbukum/rchttp/testutil"
)

// syncBuffer is a bytes.Buffer safe for the call goroutines that log into it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogging(t *testing.T) {
	var out syncBuffer
	engine := testutil.NewEngine()
	engine.Enqueue(
		testutil.Respond(http.StatusCreated, `{"id":7}`, "Set-Cookie", "sid=secret"),
		testutil.Fail(errors.New("connection reset")),
	)
	c, err := httpclient.New(
		httpclient.Config{BaseURL: "https://api.example.com"},
		httpclient.WithEngine(engine),
		httpclient.WithLogger(logger.NewWriter(&out, "info")),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	c.Authenticate("alice", "hunter2")

	c.Post(context.Background(), "items", map[string]any{"name": "a"}, nil, nil, nil).Wait()
	c.Get(context.Background(), "items/7", nil, nil, nil).Wait()

	logs := out.String()
	for _, want := range []string{
		`"message":"http request"`,
		`"message":"http response"`,
		`"message":"http response body"`,
		`"message":"http request failed"`,
		`"url":"https://api.example.com/items"`,
		`"status_code":201`,
		`"error_code":"TRANSPORT_ERROR"`,
		`"call_id":`,
		`[REDACTED]`,
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("expected logs to contain %s\n%s", want, logs)
		}
	}
	for _, leaked := range []string{"hunter2", "YWxpY2U6aHVudGVyMg==", "sid=secret"} {
		if strings.Contains(logs, leaked) {
			t.Errorf("credential %q leaked into logs", leaked)
		}
	}
}

func TestLogging_RegisteredLogger(t *testing.T) {
	var shared, billing syncBuffer
	logger.Register("httpclient", logger.NewWriter(&shared, "info"))
	logger.Register("httpclient.billing", logger.NewWriter(&billing, "info"))
	t.Cleanup(func() {
		logger.Unregister("httpclient")
		logger.Unregister("httpclient.billing")
	})

	for _, name := range []string{"billing", "search"} {
		c, err := httpclient.New(
			httpclient.Config{Name: name, BaseURL: "https://api.example.com"},
			httpclient.WithEngine(testutil.NewEngine()),
		)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		c.Get(context.Background(), name, nil, nil, nil).Wait()
	}

	if !strings.Contains(billing.String(), "/billing") || strings.Contains(billing.String(), "/search") {
		t.Errorf("billing logger got unexpected output\n%s", billing.String())
	}
	logs := shared.String()
	if !strings.Contains(logs, `"logger":"httpclient.search"`) || strings.Contains(logs, "/billing") {
		t.Errorf("parent logger got unexpected output\n%s", logs)
	}
}

func TestLoggingDisabled(t *testing.T) {
	var out syncBuffer
	engine := testutil.NewEngine()
	c, err := httpclient.New(
		httpclient.Config{BaseURL: "https://api.example.com"},
		httpclient.WithEngine(engine),
		httpclient.WithLogger(logger.NewWriter(&out, "info")),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	c.SetLoggingEnabled(false)
	c.Get(context.Background(), "quiet", nil, nil, nil).Wait()
	if out.String() != "" {
		t.Errorf("expected no logs, got %s", out.String())
	}

	c.SetLoggingEnabled(true)
	c.Get(context.Background(), "loud", nil, nil, nil).Wait()
	if !strings.Contains(out.String(), "/loud") {
		t.Errorf("expected logs after re-enabling, got %s", out.String())
	}
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error: %v", err)
	}
	engine := testutil.NewEngine()
	engine.Enqueue(
		testutil.Respond(http.StatusOK, "ok"),
		testutil.Fail(errors.New("boom")),
	)
	c, err := httpclient.New(
		httpclient.Config{Name: "api", BaseURL: "https://api.example.com", DisableLogging: true},
		httpclient.WithEngine(engine),
		httpclient.WithMetrics(metrics),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx := context.Background()
	c.Get(ctx, "a", nil, nil, nil).Wait()
	c.Get(ctx, "b", nil, nil, nil).Wait()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}
	if totals["http.client.request.total"] != 2 {
		t.Errorf("request.total = %d, want 2", totals["http.client.request.total"])
	}
	if totals["http.client.error.total"] != 1 {
		t.Errorf("error.total = %d, want 1", totals["http.client.error.total"])
	}
	if totals["http.client.request.active"] != 0 {
		t.Errorf("request.active = %d, want 0", totals["http.client.request.active"])
	}
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		_ = tp.Shutdown(context.Background())
	})

	c, engine := newClient(t, httpclient.Config{BaseURL: "https://api.example.com"})
	engine.Enqueue(
		testutil.Respond(http.StatusOK, ""),
		testutil.Fail(errors.New("refused")),
	)

	call := c.Get(context.Background(), "traced", nil, nil, nil)
	call.Wait()
	if lastRequest(t, engine).Header.Get("traceparent") == "" {
		t.Error("expected traceparent to be propagated")
	}
	c.Delete(context.Background(), "traced", nil, nil, nil, nil).Wait()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "HTTP GET" || spans[0].Status().Code == codes.Error {
		t.Errorf("unexpected first span %s %v", spans[0].Name(), spans[0].Status())
	}
	var sawCallID bool
	for _, attr := range spans[0].Attributes() {
		if string(attr.Key) == observability.AttrCallID && attr.Value.AsString() == call.ID() {
			sawCallID = true
		}
	}
	if !sawCallID {
		t.Error("expected span to carry the call ID")
	}
	if spans[1].Name() != "HTTP DELETE" || spans[1].Status().Code != codes.Error {
		t.Errorf("unexpected second span %s %v", spans[1].Name(), spans[1].Status())
	}
}

func newLiveClient(t *testing.T, baseURL string, cfg httpclient.Config) *httpclient.Client {
	t.Helper()
	cfg.BaseURL = baseURL
	cfg.DisableLogging = true
	c, err := httpclient.New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func decode[T any](t *testing.T, resp *httpclient.Response) T {
	t.Helper()
	var v T
	if err := resp.DecodeJSON(&v); err != nil {
		t.Fatalf("DecodeJSON() error: %v (body %q)", err, resp.Body)
	}
	return v
}

func TestEchoServer_RoundTrip(t *testing.T) {
	srv := testutil.NewEchoServer(t)
	c := newLiveClient(t, srv.URL+"/echo", httpclient.Config{})
	c.Authenticate("alice", "pw")
	ctx := context.Background()

	var get outcome
	c.Get(ctx, "users/1?expand=true", map[string]string{"X-Trace": "t1"}, get.onSuccess, get.onFailure).Wait()
	echo := decode[testutil.EchoResponse](t, get.response(t))
	if echo.Method != http.MethodGet || echo.Path != "/echo/users/1" || echo.Query != "expand=true" {
		t.Errorf("unexpected echo %+v", echo)
	}
	if !strings.HasPrefix(echo.Headers["User-Agent"], "rchttp/") {
		t.Errorf("User-Agent = %q", echo.Headers["User-Agent"])
	}
	if echo.Headers["Authorization"] != "Basic YWxpY2U6cHc=" || echo.Headers["X-Trace"] != "t1" {
		t.Errorf("unexpected headers %v", echo.Headers)
	}

	var post outcome
	c.Post(ctx, "items", map[string]any{"n": 1}, nil, post.onSuccess, post.onFailure).Wait()
	echo = decode[testutil.EchoResponse](t, post.response(t))
	if echo.Method != http.MethodPost || echo.Body != "{\n  \"n\": 1\n}" {
		t.Errorf("unexpected echo %+v", echo)
	}
	if echo.Headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", echo.Headers["Content-Type"])
	}
}

func TestEchoServer_ErrorStatus(t *testing.T) {
	srv := testutil.NewEchoServer(t)
	c := newLiveClient(t, srv.URL, httpclient.Config{})
	var o outcome

	c.Get(context.Background(), "status/503", nil, o.onSuccess, o.onFailure).Wait()

	resp := o.response(t)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !httpclient.IsRetryable(resp.Err()) {
		t.Errorf("expected retryable error for 503, got %v", resp.Err())
	}
}

func TestEchoServer_CookiesOnSharedSessionOnly(t *testing.T) {
	srv := testutil.NewEchoServer(t)
	c := newLiveClient(t, srv.URL, httpclient.Config{})
	ctx := context.Background()

	var set outcome
	c.Get(ctx, "cookies/set?session=abc", nil, set.onSuccess, set.onFailure).Wait()
	if resp := set.response(t); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("cookies/set status = %d", resp.StatusCode)
	}

	var shared outcome
	c.Get(ctx, "cookies", nil, shared.onSuccess, shared.onFailure).Wait()
	if got := decode[map[string]string](t, shared.response(t)); got["session"] != "abc" {
		t.Errorf("shared session cookies = %v, want session=abc", got)
	}

	var ephemeral outcome
	c.Post(ctx, "cookies", nil, nil, ephemeral.onSuccess, ephemeral.onFailure).Wait()
	if got := decode[map[string]string](t, ephemeral.response(t)); len(got) != 0 {
		t.Errorf("ephemeral session sent cookies %v", got)
	}
}

func TestEchoServer_UploadMultipart(t *testing.T) {
	srv := testutil.NewEchoServer(t)
	c := newLiveClient(t, srv.URL, httpclient.Config{})
	var o outcome

	c.UploadMultipart(context.Background(), "upload", &httpclient.MultipartBody{
		Fields: map[string]string{"title": "report"},
		Files: []httpclient.FileField{{
			FieldName:   "file",
			FileName:    "report.csv",
			ContentType: "text/csv",
			Data:        []byte("a,b\n1,2\n"),
		}},
	}, nil, o.onSuccess, o.onFailure).Wait()

	got := decode[testutil.UploadResponse](t, o.response(t))
	if got.Fields["title"] != "report" {
		t.Errorf("fields = %v", got.Fields)
	}
	file := got.Files["file"]
	if file.FileName != "report.csv" || file.ContentType != "text/csv" || file.Content != "a,b\n1,2\n" {
		t.Errorf("file = %+v", file)
	}
}

func TestLiveTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := newLiveClient(t, srv.URL, httpclient.Config{Timeout: 50 * time.Millisecond})
	var o outcome

	c.Get(context.Background(), "slow", nil, o.onSuccess, o.onFailure).Wait()

	if err := o.failure(t); !httpclient.IsTimeout(err) {
		t.Errorf("expected TIMEOUT, got %v", err)
	}
}

func TestLiveConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := newLiveClient(t, addr, httpclient.Config{})
	var o outcome

	c.Get(context.Background(), "anything", nil, o.onSuccess, o.onFailure).Wait()

	err := o.failure(t)
	if !httpclient.IsTransport(err) {
		t.Errorf("expected TRANSPORT_ERROR, got %v", err)
	}
}
