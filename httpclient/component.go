package httpclient

import (
	"context"
	"fmt"

	"github.com/kbukum/rchttp/component"
)

// Component wraps a Client with lifecycle management.
type Component struct {
	client *Client
	config Config
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new HTTP client component.
// The client is created in Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return defaultName
	}
	return c.config.Name
}

// Start creates the client.
func (c *Component) Start(_ context.Context) error {
	client, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// Stop closes the client, canceling pending calls.
func (c *Component) Stop(ctx context.Context) error {
	if c.client != nil {
		return c.client.Close(ctx)
	}
	return nil
}

// Health reports unhealthy until Start succeeds and after Stop.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case c.client == nil:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	case c.client.IsClosed():
		h.Status = component.StatusUnhealthy
		h.Message = "closed"
	case c.client.BaseURL() == "":
		h.Status = component.StatusDegraded
		h.Message = "base URL not set"
	}
	return h
}

// Describe returns a one-line summary of the client configuration.
func (c *Component) Describe() component.Description {
	cfg := c.config
	cfg.ApplyDefaults()
	timeout := cfg.Timeout.String()
	if cfg.Timeout < 0 {
		timeout = "none"
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "http-client",
		Details: fmt.Sprintf("%s timeout=%s", cfg.BaseURL, timeout),
	}
}

// Client returns the underlying client. It is nil before Start.
func (c *Component) Client() *Client {
	return c.client
}
