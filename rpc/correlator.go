// Package rpc defines the narrow correlation boundary the connection layer
// consumes: send a request and await its matched response, emit one-way
// notifications, and dispatch inbound traffic by method name. Id assignment
// and response matching are delegated to github.com/sourcegraph/jsonrpc2;
// this package only routes.
package rpc

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/corewire/mcpconn/internal/collection"
)

// RequestHandler answers one inbound request. Returning a *jsonrpc2.Error
// sends that error verbatim; any other error becomes an internal error
// response.
type RequestHandler func(ctx context.Context, params json.RawMessage) (any, error)

// NotificationHandler consumes one inbound notification. Notifications have
// no response; errors have nowhere to go, so the handler returns none.
type NotificationHandler func(ctx context.Context, params json.RawMessage)

// Correlator is the request/response correlation primitive a connection is
// built on: requests resolve exactly once with a result or an error, and
// inbound requests and notifications are dispatched by method name in
// arrival order.
type Correlator interface {
	// SendRequest sends method with params and unmarshals the matched
	// response into result. result may be nil to discard the payload.
	SendRequest(ctx context.Context, method string, params, result any) error

	// SendNotification emits a one-way message with no expected response.
	SendNotification(ctx context.Context, method string, params any) error

	// RegisterRequestHandler routes inbound requests for method to handler.
	RegisterRequestHandler(method string, handler RequestHandler)

	// RegisterNotificationHandler routes inbound notifications for method
	// to handler.
	RegisterNotificationHandler(method string, handler NotificationHandler)

	// Close tears the underlying stream down. Pending requests fail.
	Close() error

	// Done is closed once the underlying stream has disconnected, whether
	// by Close or by peer failure.
	Done() <-chan struct{}
}

// Conn is the jsonrpc2-backed Correlator.
type Conn struct {
	conn       *jsonrpc2.Conn
	dispatcher *dispatcher
}

// Option configures a Conn.
type Option func(*dispatcher)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(d *dispatcher) {
		d.log = log
	}
}

// NewConn starts a correlator over stream. The read loop runs until the
// stream disconnects; handlers registered afterwards receive only traffic
// that arrives after registration.
func NewConn(ctx context.Context, stream jsonrpc2.ObjectStream, options ...Option) *Conn {
	d := &dispatcher{
		requests:      collection.NewSyncMap[string, RequestHandler](),
		notifications: collection.NewSyncMap[string, NotificationHandler](),
		log:           slog.Default(),
	}
	for _, opt := range options {
		opt(d)
	}
	c := &Conn{dispatcher: d}
	c.conn = jsonrpc2.NewConn(ctx, stream, d)
	return c
}

func (c *Conn) SendRequest(ctx context.Context, method string, params, result any) error {
	if result == nil {
		var discard json.RawMessage
		return c.conn.Call(ctx, method, params, &discard)
	}
	return c.conn.Call(ctx, method, params, result)
}

func (c *Conn) SendNotification(ctx context.Context, method string, params any) error {
	return c.conn.Notify(ctx, method, params)
}

func (c *Conn) RegisterRequestHandler(method string, handler RequestHandler) {
	c.dispatcher.requests.Put(method, handler)
}

func (c *Conn) RegisterNotificationHandler(method string, handler NotificationHandler) {
	c.dispatcher.notifications.Put(method, handler)
}

// Close is idempotent; closing an already-disconnected Conn reports no
// error.
func (c *Conn) Close() error {
	if err := c.conn.Close(); err != nil && err != jsonrpc2.ErrClosed {
		return err
	}
	return nil
}

func (c *Conn) Done() <-chan struct{} {
	return c.conn.DisconnectNotify()
}
