package httpclient

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	callPending int32 = iota
	callCompleted
	callCanceled
)

// Call is the handle of one dispatched request.
type Call struct {
	id     string
	method string
	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}

	// tracked and released are guarded by the owning Client's mu.
	tracked  bool
	released bool
}

func newCall(parent context.Context, method string) *Call {
	ctx, cancel := context.WithCancel(parent)
	return &Call{
		id:     uuid.NewString(),
		method: method,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the unique identifier of the call.
func (c *Call) ID() string { return c.id }

// Method returns the HTTP method of the call.
func (c *Call) Method() string { return c.method }

// Cancel aborts the call if it has not completed yet and suppresses both
// callbacks. It reports whether the call was still pending.
func (c *Call) Cancel() bool {
	if !c.state.CompareAndSwap(callPending, callCanceled) {
		return false
	}
	c.cancel()
	return true
}

// Canceled reports whether the call was canceled before completing.
func (c *Call) Canceled() bool {
	return c.state.Load() == callCanceled
}

// Done is closed once the call has finished, after its callback returned.
func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call has finished.
func (c *Call) Wait() { <-c.done }

// deliver runs fn unless the call was canceled or already delivered.
func (c *Call) deliver(fn func()) bool {
	if !c.state.CompareAndSwap(callPending, callCompleted) {
		return false
	}
	fn()
	return true
}

// finish releases the call context and unblocks waiters.
func (c *Call) finish() {
	c.cancel()
	close(c.done)
}
