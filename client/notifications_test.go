package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/schema"

	mcpschema "github.com/corewire/mcpconn/schema"
)

func TestNotificationDeliveredToSubscriber(t *testing.T) {
	ctx := context.Background()
	handler := echoHandler(t)
	conn := startPeer(t, ctx, handler)
	_, err := conn.Initialize(ctx)
	require.NoError(t, err)

	events, cancel := conn.ToolListChanged()
	defer cancel()

	require.NoError(t, handler.NotifyToolListChanged(ctx))
	select {
	case _, ok := <-events:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("tool list change not delivered")
	}
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	ctx := context.Background()
	handler := echoHandler(t)
	conn := startPeer(t, ctx, handler)
	_, err := conn.Initialize(ctx)
	require.NoError(t, err)

	// Event fires with nobody listening; it is lost by design.
	require.NoError(t, handler.NotifyPromptListChanged(ctx))
	time.Sleep(100 * time.Millisecond)

	events, cancel := conn.PromptListChanged()
	defer cancel()
	select {
	case <-events:
		t.Fatal("past event replayed to late subscriber")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestResourceUpdatedOnlyForSubscribedURI(t *testing.T) {
	ctx := context.Background()
	handler := echoHandler(t)
	conn := startPeer(t, ctx, handler)
	_, err := conn.Initialize(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Initialized(ctx))

	events, cancel := conn.ResourceUpdated()
	defer cancel()

	// Not subscribed yet: the server suppresses the notification.
	require.NoError(t, handler.NotifyResourceUpdated(ctx, "mem://a"))
	select {
	case <-events:
		t.Fatal("unsubscribed resource update delivered")
	case <-time.After(150 * time.Millisecond):
	}

	_, err = conn.Subscribe(ctx, &schema.SubscribeRequestParams{Uri: "mem://a"})
	require.NoError(t, err)
	require.NoError(t, handler.NotifyResourceUpdated(ctx, "mem://a"))
	select {
	case event := <-events:
		assert.Equal(t, mcpschema.ResourceUpdatedParams{Uri: "mem://a"}, event)
	case <-time.After(2 * time.Second):
		t.Fatal("resource update not delivered")
	}
}

func TestLogMessagesRespectLevel(t *testing.T) {
	ctx := context.Background()
	handler := echoHandler(t)
	conn := startPeer(t, ctx, handler)
	_, err := conn.Initialize(ctx)
	require.NoError(t, err)
	require.NoError(t, conn.Initialized(ctx))

	messages, cancel := conn.LogMessages()
	defer cancel()
	logger := handler.Logger("test")

	// No level set yet: everything is filtered.
	require.NoError(t, logger.Error(ctx, "dropped"))
	select {
	case <-messages:
		t.Fatal("log emitted before a level was set")
	case <-time.After(150 * time.Millisecond):
	}

	_, err = conn.SetLevel(ctx, &schema.SetLevelRequestParams{Level: schema.Warning})
	require.NoError(t, err)

	require.NoError(t, logger.Debug(ctx, "too verbose"))
	require.NoError(t, logger.Error(ctx, "kept"))
	select {
	case message := <-messages:
		assert.Equal(t, schema.LoggingLevelError, message.Level)
		assert.Equal(t, "kept", message.Data)
	case <-time.After(2 * time.Second):
		t.Fatal("log message not delivered")
	}
}

func TestShutdownCompletesStreams(t *testing.T) {
	ctx := context.Background()
	conn := startPeer(t, ctx, echoHandler(t))
	_, err := conn.Initialize(ctx)
	require.NoError(t, err)

	tools, cancelTools := conn.ToolListChanged()
	defer cancelTools()
	logs, cancelLogs := conn.LogMessages()
	defer cancelLogs()

	require.NoError(t, conn.Shutdown(ctx))

	_, ok := <-tools
	assert.False(t, ok)
	_, ok = <-logs
	assert.False(t, ok)

	// Subscribing after shutdown observes immediate completion.
	late, cancelLate := conn.ResourceUpdated()
	defer cancelLate()
	_, ok = <-late
	assert.False(t, ok)
}
