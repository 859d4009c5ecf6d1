package httpclient

import (
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Engine hands out the sessions requests are dispatched on.
type Engine interface {
	// Shared returns the long-lived session that keeps cookies and pooled connections.
	Shared() Doer
	// Ephemeral returns a fresh session that keeps no cookies and does not reuse connections.
	Ephemeral() Doer
}

// Session selects which engine session serves a request.
type Session int

const (
	// SessionDefault uses the shared session for GET and an ephemeral one otherwise.
	SessionDefault Session = iota
	// SessionShared forces the shared session.
	SessionShared
	// SessionEphemeral forces an ephemeral session.
	SessionEphemeral
)

// String returns the session name used in logs and spans.
func (s Session) String() string {
	switch s {
	case SessionShared:
		return "shared"
	case SessionEphemeral:
		return "ephemeral"
	default:
		return "default"
	}
}

// resolve picks the concrete session for method.
func (s Session) resolve(method string) Session {
	if s != SessionDefault {
		return s
	}
	if method == http.MethodGet {
		return SessionShared
	}
	return SessionEphemeral
}

// netEngine is the net/http backed Engine.
type netEngine struct {
	shared    *http.Client
	transport *http.Transport
	timeout   time.Duration
}

// NewEngine creates the default net/http engine. The shared session carries a
// cookie jar scoped by the public suffix list. A negative timeout leaves
// requests unbounded.
func NewEngine(timeout time.Duration) (Engine, error) {
	if timeout < 0 {
		timeout = 0
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &netEngine{
		shared: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   timeout,
		},
		transport: transport,
		timeout:   timeout,
	}, nil
}

func (e *netEngine) Shared() Doer {
	return e.shared
}

func (e *netEngine) Ephemeral() Doer {
	t := e.transport.Clone()
	t.DisableKeepAlives = true
	return &http.Client{
		Transport: t,
		Timeout:   e.timeout,
	}
}

// CloseIdleConnections releases pooled connections held by the shared session.
func (e *netEngine) CloseIdleConnections() {
	e.shared.CloseIdleConnections()
}
