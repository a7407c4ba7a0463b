package client

import (
	"context"

	"github.com/viant/mcp-protocol/schema"
)

// Interface is the typed operation surface a Connection exposes.
type Interface interface {
	// Initialize performs the capability handshake
	Initialize(ctx context.Context) (*schema.InitializeResult, error)

	// Initialized notifies the peer the handshake result was accepted
	Initialized(ctx context.Context) error

	// ListTools lists tools
	ListTools(ctx context.Context, cursor *string) (*schema.ListToolsResult, error)

	// CallTool calls a tool
	CallTool(ctx context.Context, params *schema.CallToolRequestParams) (*schema.CallToolResult, error)

	// ListResources lists resources
	ListResources(ctx context.Context, cursor *string) (*schema.ListResourcesResult, error)

	// ReadResource reads a resource
	ReadResource(ctx context.Context, params *schema.ReadResourceRequestParams) (*schema.ReadResourceResult, error)

	// ListPrompts lists prompts
	ListPrompts(ctx context.Context, cursor *string) (*schema.ListPromptsResult, error)

	// GetPrompt gets a prompt
	GetPrompt(ctx context.Context, params *schema.GetPromptRequestParams) (*schema.GetPromptResult, error)

	// Subscribe subscribes to a resource
	Subscribe(ctx context.Context, params *schema.SubscribeRequestParams) (*schema.SubscribeResult, error)

	// Unsubscribe unsubscribes from a resource
	Unsubscribe(ctx context.Context, params *schema.UnsubscribeRequestParams) (*schema.UnsubscribeResult, error)

	// SetLevel sets the logging level
	SetLevel(ctx context.Context, params *schema.SetLevelRequestParams) (*schema.SetLevelResult, error)

	// Ping pings the peer
	Ping(ctx context.Context) (*schema.PingResult, error)

	// Shutdown tears the connection down
	Shutdown(ctx context.Context) error
}

// Ensure Connection implements Interface
var _ Interface = (*Connection)(nil)
