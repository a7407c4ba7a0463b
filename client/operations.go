package client

import (
	"context"
	"fmt"

	"github.com/viant/mcp-protocol/schema"
)

// send issues one typed request on the connection's correlator. Every call
// resolves exactly once, with the typed result or with an error wrapping
// the transport or protocol failure; concurrent calls interleave freely
// with inbound dispatch.
func send[P any, R any](ctx context.Context, c *Connection, method string, parameters *P) (*R, error) {
	switch c.State() {
	case StateShuttingDown, StateClosed:
		return nil, fmt.Errorf("%s: %w", method, ErrConnectionClosed)
	case StateCreated, StateInitializing:
		// The liveness probe is the one call honoured before the handshake.
		if method != schema.MethodPing {
			return nil, fmt.Errorf("%s: %w", method, ErrNotInitialized)
		}
	}
	var result R
	if err := c.corr.SendRequest(ctx, method, parameters, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &result, nil
}

// ListTools lists the tools the peer exposes.
func (c *Connection) ListTools(ctx context.Context, cursor *string) (*schema.ListToolsResult, error) {
	params := &schema.ListToolsRequestParams{Cursor: cursor}
	return send[schema.ListToolsRequestParams, schema.ListToolsResult](ctx, c, schema.MethodToolsList, params)
}

// CallTool invokes one tool on the peer.
func (c *Connection) CallTool(ctx context.Context, params *schema.CallToolRequestParams) (*schema.CallToolResult, error) {
	return send[schema.CallToolRequestParams, schema.CallToolResult](ctx, c, schema.MethodToolsCall, params)
}

// ListResources lists the resources the peer exposes.
func (c *Connection) ListResources(ctx context.Context, cursor *string) (*schema.ListResourcesResult, error) {
	params := &schema.ListResourcesRequestParams{Cursor: cursor}
	return send[schema.ListResourcesRequestParams, schema.ListResourcesResult](ctx, c, schema.MethodResourcesList, params)
}

// ReadResource reads one resource from the peer.
func (c *Connection) ReadResource(ctx context.Context, params *schema.ReadResourceRequestParams) (*schema.ReadResourceResult, error) {
	return send[schema.ReadResourceRequestParams, schema.ReadResourceResult](ctx, c, schema.MethodResourcesRead, params)
}

// ListPrompts lists the prompts the peer exposes.
func (c *Connection) ListPrompts(ctx context.Context, cursor *string) (*schema.ListPromptsResult, error) {
	params := &schema.ListPromptsRequestParams{Cursor: cursor}
	return send[schema.ListPromptsRequestParams, schema.ListPromptsResult](ctx, c, schema.MethodPromptsList, params)
}

// GetPrompt fetches one prompt from the peer.
func (c *Connection) GetPrompt(ctx context.Context, params *schema.GetPromptRequestParams) (*schema.GetPromptResult, error) {
	return send[schema.GetPromptRequestParams, schema.GetPromptResult](ctx, c, schema.MethodPromptsGet, params)
}

// Subscribe registers for update notifications on one resource.
func (c *Connection) Subscribe(ctx context.Context, params *schema.SubscribeRequestParams) (*schema.SubscribeResult, error) {
	return send[schema.SubscribeRequestParams, schema.SubscribeResult](ctx, c, schema.MethodSubscribe, params)
}

// Unsubscribe drops the update subscription for one resource.
func (c *Connection) Unsubscribe(ctx context.Context, params *schema.UnsubscribeRequestParams) (*schema.UnsubscribeResult, error) {
	return send[schema.UnsubscribeRequestParams, schema.UnsubscribeResult](ctx, c, schema.MethodUnsubscribe, params)
}

// SetLevel sets the minimum severity the peer reports through the log
// message stream.
func (c *Connection) SetLevel(ctx context.Context, params *schema.SetLevelRequestParams) (*schema.SetLevelResult, error) {
	return send[schema.SetLevelRequestParams, schema.SetLevelResult](ctx, c, schema.MethodLoggingSetLevel, params)
}

// Ping issues a liveness probe. Unlike the other operations it is honoured
// in every state before Closed.
func (c *Connection) Ping(ctx context.Context) (*schema.PingResult, error) {
	params := &schema.PingRequestParams{}
	return send[schema.PingRequestParams, schema.PingResult](ctx, c, schema.MethodPing, params)
}
