// Package client implements the client side of the connection layer: one
// Connection per peer, owning the correlator bound to that peer's frame
// stream, the initialize/shutdown lifecycle, the typed operation surface and
// the per-event-kind notification streams.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/mcp-protocol/schema"

	"github.com/corewire/mcpconn/rpc"
	mcpschema "github.com/corewire/mcpconn/schema"
)

var (
	// ErrConnectionClosed reports a call on a connection that already
	// reached Closed.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrNotInitialized reports a typed call issued before the initialize
	// handshake completed.
	ErrNotInitialized = errors.New("connection not initialized")
)

// Connection is the protocol state machine bound to one peer. It owns its
// correlator exclusively; handlers and notification streams are set up at
// construction and never mutated afterwards.
type Connection struct {
	id              string
	name            string
	info            schema.Implementation
	capabilities    schema.ClientCapabilities
	protocolVersion string
	meta            map[string]any
	corr            rpc.Correlator
	providers       []Capability
	log             *slog.Logger

	streams *streams

	mux    sync.Mutex
	state  State
	peer   *schema.InitializeResult
	closed chan struct{}
}

// New builds a Connection over an already-open correlator. Built-in
// handlers (the ping responder and the five notification feeds) are live
// immediately, before any handshake.
func New(name, version string, corr rpc.Correlator, options ...Option) (*Connection, error) {
	c := &Connection{
		id:      uuid.New().String(),
		name:    name,
		info:    *schema.NewImplementation(name, version),
		corr:    corr,
		log:     slog.Default(),
		closed:  make(chan struct{}),
		streams: newStreams(),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.protocolVersion == "" {
		c.protocolVersion = schema.LatestProtocolVersion
	}
	c.registerBuiltins()
	for _, provider := range c.providers {
		if err := provider.Install(c); err != nil {
			return nil, fmt.Errorf("install capability: %w", err)
		}
	}
	go c.watchDisconnect()
	return c, nil
}

// registerBuiltins wires the always-on inbound handlers. The liveness probe
// is answered in every state, handshake or not.
func (c *Connection) registerBuiltins() {
	c.corr.RegisterRequestHandler(schema.MethodPing, func(ctx context.Context, params json.RawMessage) (any, error) {
		return &schema.PingResult{}, nil
	})
	c.corr.RegisterNotificationHandler(mcpschema.MethodNotificationToolsListChanged, listChangedFeed(c.streams.toolListChanged))
	c.corr.RegisterNotificationHandler(mcpschema.MethodNotificationPromptsListChanged, listChangedFeed(c.streams.promptListChanged))
	c.corr.RegisterNotificationHandler(mcpschema.MethodNotificationResourcesListChanged, listChangedFeed(c.streams.resourceListChanged))
	c.corr.RegisterNotificationHandler(schema.MethodNotificationResourceUpdated, func(ctx context.Context, params json.RawMessage) {
		var p mcpschema.ResourceUpdatedParams
		decodeParams(params, &p)
		c.streams.resourceUpdated.Publish(p)
	})
	c.corr.RegisterNotificationHandler(schema.MethodNotificationMessage, func(ctx context.Context, params json.RawMessage) {
		var p schema.LoggingMessageNotificationParams
		decodeParams(params, &p)
		c.streams.logMessages.Publish(p)
	})
}

// watchDisconnect force-closes the connection when the underlying stream
// dies, so notification subscribers don't wait on a peer that is gone.
func (c *Connection) watchDisconnect() {
	<-c.corr.Done()
	c.markClosed()
}

// Initialize performs the handshake: it sends this side's declared
// capabilities and identity and returns the peer's. It does not send the
// follow-up initialized notification; that step stays under caller control,
// see Initialized.
func (c *Connection) Initialize(ctx context.Context) (*schema.InitializeResult, error) {
	c.mux.Lock()
	switch c.state {
	case StateShuttingDown, StateClosed:
		c.mux.Unlock()
		return nil, fmt.Errorf("%s: %w", schema.MethodInitialize, ErrConnectionClosed)
	}
	c.state = StateInitializing
	c.mux.Unlock()

	params := &schema.InitializeRequestParams{
		Capabilities:    c.capabilities,
		ClientInfo:      c.info,
		ProtocolVersion: c.protocolVersion,
	}
	var result schema.InitializeResult
	if err := c.corr.SendRequest(ctx, schema.MethodInitialize, params, &result); err != nil {
		c.mux.Lock()
		if c.state == StateInitializing {
			c.state = StateCreated
		}
		c.mux.Unlock()
		return nil, fmt.Errorf("%s: %w", schema.MethodInitialize, err)
	}

	c.mux.Lock()
	if c.state == StateInitializing {
		c.state = StateOperating
		c.peer = &result
	}
	closed := c.state == StateClosed
	c.mux.Unlock()
	if closed {
		return nil, fmt.Errorf("%s: %w", schema.MethodInitialize, ErrConnectionClosed)
	}
	return &result, nil
}

// Initialized tells the peer this side is ready for normal operation. Call
// it after a successful Initialize.
func (c *Connection) Initialized(ctx context.Context) error {
	if c.State() == StateClosed || c.State() == StateShuttingDown {
		return fmt.Errorf("%s: %w", schema.MethodNotificationInitialized, ErrConnectionClosed)
	}
	if err := c.corr.SendNotification(ctx, schema.MethodNotificationInitialized, nil); err != nil {
		return fmt.Errorf("%s: %w", schema.MethodNotificationInitialized, err)
	}
	return nil
}

// Shutdown closes the connection: calls issued from this moment fail, the
// correlator and transport are torn down, and every notification stream
// completes before Shutdown returns. Repeated calls wait for the same
// teardown.
func (c *Connection) Shutdown(ctx context.Context) error {
	c.mux.Lock()
	switch c.state {
	case StateClosed:
		c.mux.Unlock()
		return nil
	case StateShuttingDown:
		c.mux.Unlock()
		select {
		case <-c.closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.state = StateShuttingDown
	c.mux.Unlock()

	err := c.corr.Close()
	select {
	case <-c.corr.Done():
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}
	c.markClosed()
	return err
}

// markClosed flips the connection into its absorbing terminal state exactly
// once.
func (c *Connection) markClosed() {
	c.mux.Lock()
	if c.state == StateClosed {
		c.mux.Unlock()
		return
	}
	c.state = StateClosed
	c.mux.Unlock()
	c.streams.closeAll()
	close(c.closed)
	c.log.Debug("connection closed", "id", c.id, "name", c.name)
}

// State returns the current lifecycle phase.
func (c *Connection) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.state
}

// ID is the unique instance id assigned at construction.
func (c *Connection) ID() string { return c.id }

// Name is the implementation name declared during the handshake.
func (c *Connection) Name() string { return c.name }

// Done is closed once the connection reached Closed.
func (c *Connection) Done() <-chan struct{} { return c.closed }

// Correlator exposes the underlying correlation primitive so capability
// providers can register their handlers during Install.
func (c *Connection) Correlator() rpc.Correlator { return c.corr }

// Capabilities returns the mutable declared capabilities. Mutate only
// during capability Install, before Initialize is called.
func (c *Connection) Capabilities() *schema.ClientCapabilities { return &c.capabilities }

// PeerInfo returns the peer identity from the handshake, or nil before
// Initialize completed.
func (c *Connection) PeerInfo() *schema.Implementation {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.peer == nil {
		return nil
	}
	info := c.peer.ServerInfo
	return &info
}

// PeerCapabilities returns the peer's declared capabilities from the
// handshake, or nil before Initialize completed.
func (c *Connection) PeerCapabilities() *schema.ServerCapabilities {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.peer == nil {
		return nil
	}
	capabilities := c.peer.Capabilities
	return &capabilities
}

func decodeParams(params json.RawMessage, v any) {
	if len(params) == 0 {
		return
	}
	// Notification payloads are pushed through with no error handling; a
	// malformed one simply yields zero-value params.
	_ = json.Unmarshal(params, v)
}
