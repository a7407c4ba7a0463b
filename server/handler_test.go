package server_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/schema"

	"github.com/corewire/mcpconn/frame"
	"github.com/corewire/mcpconn/rpc"
	"github.com/corewire/mcpconn/server"
)

// attach wires handler to one end of a pipe and returns a correlator for
// the other end, acting as the calling peer.
func attach(t *testing.T, ctx context.Context, handler *server.Handler) rpc.Correlator {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	serverCorr := rpc.NewConn(ctx, frame.NewStream(serverSide))
	handler.Attach(serverCorr)
	clientCorr := rpc.NewConn(ctx, frame.NewStream(clientSide))
	t.Cleanup(func() {
		_ = clientCorr.Close()
		_ = serverCorr.Close()
	})
	return clientCorr
}

// handshake performs initialize plus the initialized notification so guarded
// methods open up.
func handshake(t *testing.T, ctx context.Context, corr rpc.Correlator) *schema.InitializeResult {
	t.Helper()
	var result schema.InitializeResult
	err := corr.SendRequest(ctx, schema.MethodInitialize, &schema.InitializeRequestParams{
		ProtocolVersion: schema.LatestProtocolVersion,
		ClientInfo:      *schema.NewImplementation("peer", "1.0"),
	}, &result)
	require.NoError(t, err)
	require.NoError(t, corr.SendNotification(ctx, schema.MethodNotificationInitialized, nil))
	// Notifications are one-way; give the handler a moment to observe it.
	time.Sleep(50 * time.Millisecond)
	return &result
}

func TestInitializeResult(t *testing.T) {
	ctx := context.Background()
	instructions := "use the echo tool"
	handler := server.New("answering-peer", "2.0", server.WithInstructions(instructions))
	handler.RegisterTool(&server.Tool{
		Definition: schema.Tool{Name: "echo"},
		Call: func(ctx context.Context, args map[string]any) (*schema.CallToolResult, error) {
			return &schema.CallToolResult{}, nil
		},
	})
	corr := attach(t, ctx, handler)

	result := handshake(t, ctx, corr)
	assert.Equal(t, "answering-peer", result.ServerInfo.Name)
	assert.Equal(t, "2.0", result.ServerInfo.Version)
	assert.Equal(t, schema.LatestProtocolVersion, result.ProtocolVersion)
	require.NotNil(t, result.Instructions)
	assert.Equal(t, instructions, *result.Instructions)
	// Registering a tool advertises the tools capability.
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestUnknownToolRejected(t *testing.T) {
	ctx := context.Background()
	handler := server.New("answering-peer", "1.0")
	corr := attach(t, ctx, handler)
	handshake(t, ctx, corr)

	err := corr.SendRequest(ctx, schema.MethodToolsCall, &schema.CallToolRequestParams{Name: "no-such-tool"}, nil)
	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, int64(jsonrpc2.CodeInvalidParams), rpcErr.Code)
}

func TestUnknownResourceCode(t *testing.T) {
	ctx := context.Background()
	handler := server.New("answering-peer", "1.0")
	corr := attach(t, ctx, handler)
	handshake(t, ctx, corr)

	err := corr.SendRequest(ctx, schema.MethodResourcesRead, &schema.ReadResourceRequestParams{Uri: "mem://missing"}, nil)
	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, int64(-32002), rpcErr.Code)
}

func TestResourceReadAndSubscriptionState(t *testing.T) {
	ctx := context.Background()
	handler := server.New("answering-peer", "1.0")
	handler.RegisterResource(&server.Resource{
		Definition: schema.Resource{Name: "config", Uri: "mem://config"},
		Read: func(ctx context.Context, uri string) (*schema.ReadResourceResult, error) {
			return &schema.ReadResourceResult{}, nil
		},
	})
	corr := attach(t, ctx, handler)
	result := handshake(t, ctx, corr)
	assert.NotNil(t, result.Capabilities.Resources)

	var read schema.ReadResourceResult
	require.NoError(t, corr.SendRequest(ctx, schema.MethodResourcesRead, &schema.ReadResourceRequestParams{Uri: "mem://config"}, &read))

	require.NoError(t, corr.SendRequest(ctx, schema.MethodSubscribe, &schema.SubscribeRequestParams{Uri: "mem://config"}, nil))
	require.NoError(t, corr.SendRequest(ctx, schema.MethodUnsubscribe, &schema.UnsubscribeRequestParams{Uri: "mem://config"}, nil))

	// After unsubscribe the update notification is suppressed again, so
	// sending reports no error and nothing is emitted.
	require.NoError(t, handler.NotifyResourceUpdated(ctx, "mem://config"))
}

func TestMethodNotFound(t *testing.T) {
	ctx := context.Background()
	handler := server.New("answering-peer", "1.0")
	corr := attach(t, ctx, handler)
	handshake(t, ctx, corr)

	err := corr.SendRequest(ctx, "completion/complete", nil, nil)
	var rpcErr *jsonrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, int64(jsonrpc2.CodeMethodNotFound), rpcErr.Code)
}
