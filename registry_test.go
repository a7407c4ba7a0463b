package mcpconn_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corewire/mcpconn"
	"github.com/corewire/mcpconn/frame"
	"github.com/corewire/mcpconn/rpc"
	"github.com/corewire/mcpconn/server"
)

// pipePeer returns the client end of an in-process pipe whose other end is
// served by an answering handler.
func pipePeer(t *testing.T, ctx context.Context) net.Conn {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	corr := rpc.NewConn(ctx, frame.NewStream(serverSide))
	server.New("registry-peer", "1.0").Attach(corr)
	t.Cleanup(func() { _ = corr.Close() })
	return clientSide
}

func TestRegistryConnectAndLookup(t *testing.T) {
	ctx := context.Background()
	registry := mcpconn.NewRegistry(nil)
	defer registry.ShutdownAll(ctx)

	conn, err := registry.Connect(ctx, "main", pipePeer(t, ctx))
	require.NoError(t, err)

	got, ok := registry.Lookup("main")
	require.True(t, ok)
	assert.Same(t, conn, got)
	assert.Equal(t, []string{"main"}, registry.Names())
	assert.Equal(t, 1, registry.Len())

	result, err := conn.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, "registry-peer", result.ServerInfo.Name)
}

func TestRegistryConnectReplacesExisting(t *testing.T) {
	ctx := context.Background()
	registry := mcpconn.NewRegistry(nil)
	defer registry.ShutdownAll(ctx)

	first, err := registry.Connect(ctx, "main", pipePeer(t, ctx))
	require.NoError(t, err)
	second, err := registry.Connect(ctx, "main", pipePeer(t, ctx))
	require.NoError(t, err)

	got, ok := registry.Lookup("main")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, registry.Len())

	// The replaced connection stays alive; the caller shuts it down.
	require.NoError(t, first.Shutdown(ctx))
}

func TestRegistryDisconnectUnknown(t *testing.T) {
	registry := mcpconn.NewRegistry(nil)
	err := registry.Disconnect(context.Background(), "nope")
	assert.ErrorIs(t, err, mcpconn.ErrUnknownConnection)
}

func TestRegistryDisconnect(t *testing.T) {
	ctx := context.Background()
	registry := mcpconn.NewRegistry(nil)

	conn, err := registry.Connect(ctx, "main", pipePeer(t, ctx))
	require.NoError(t, err)
	require.NoError(t, registry.Disconnect(ctx, "main"))

	_, ok := registry.Lookup("main")
	assert.False(t, ok)
	select {
	case <-conn.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("disconnected connection never closed")
	}
}

// flakyStream fails its Close after tearing the pipe down, standing in for a
// transport whose shutdown path errors.
type flakyStream struct {
	net.Conn
}

func (f flakyStream) Close() error {
	_ = f.Conn.Close()
	return errors.New("stream close failed")
}

func TestRegistryShutdownAllAggregatesFailures(t *testing.T) {
	ctx := context.Background()
	registry := mcpconn.NewRegistry(nil)

	good1, err := registry.Connect(ctx, "good-1", pipePeer(t, ctx))
	require.NoError(t, err)
	good2, err := registry.Connect(ctx, "good-2", pipePeer(t, ctx))
	require.NoError(t, err)
	_, err = registry.Connect(ctx, "bad", flakyStream{Conn: pipePeer(t, ctx)})
	require.NoError(t, err)

	err = registry.ShutdownAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	// One failing connection does not keep the others open or registered.
	assert.Equal(t, 0, registry.Len())
	select {
	case <-good1.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("healthy connection not closed")
	}
	select {
	case <-good2.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("healthy connection not closed")
	}
}
