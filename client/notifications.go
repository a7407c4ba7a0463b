package client

import (
	"context"
	"encoding/json"

	"github.com/viant/mcp-protocol/schema"

	"github.com/corewire/mcpconn/internal/notify"
	mcpschema "github.com/corewire/mcpconn/schema"
)

// streams holds one broadcast point per inbound event kind. Each is created
// at construction and closed exactly once during shutdown.
type streams struct {
	toolListChanged     *notify.Broadcaster[mcpschema.ListChangedParams]
	promptListChanged   *notify.Broadcaster[mcpschema.ListChangedParams]
	resourceListChanged *notify.Broadcaster[mcpschema.ListChangedParams]
	resourceUpdated     *notify.Broadcaster[mcpschema.ResourceUpdatedParams]
	logMessages         *notify.Broadcaster[schema.LoggingMessageNotificationParams]
}

func newStreams() *streams {
	return &streams{
		toolListChanged:     notify.NewBroadcaster[mcpschema.ListChangedParams](),
		promptListChanged:   notify.NewBroadcaster[mcpschema.ListChangedParams](),
		resourceListChanged: notify.NewBroadcaster[mcpschema.ListChangedParams](),
		resourceUpdated:     notify.NewBroadcaster[mcpschema.ResourceUpdatedParams](),
		logMessages:         notify.NewBroadcaster[schema.LoggingMessageNotificationParams](),
	}
}

func (s *streams) closeAll() {
	s.toolListChanged.Close()
	s.promptListChanged.Close()
	s.resourceListChanged.Close()
	s.resourceUpdated.Close()
	s.logMessages.Close()
}

func listChangedFeed(b *notify.Broadcaster[mcpschema.ListChangedParams]) func(context.Context, json.RawMessage) {
	return func(ctx context.Context, params json.RawMessage) {
		var p mcpschema.ListChangedParams
		decodeParams(params, &p)
		b.Publish(p)
	}
}

// ToolListChanged subscribes to tools/list_changed events. Only events that
// arrive after subscribing are delivered; cancel releases the subscription.
func (c *Connection) ToolListChanged() (<-chan mcpschema.ListChangedParams, func()) {
	return c.streams.toolListChanged.Subscribe()
}

// PromptListChanged subscribes to prompts/list_changed events.
func (c *Connection) PromptListChanged() (<-chan mcpschema.ListChangedParams, func()) {
	return c.streams.promptListChanged.Subscribe()
}

// ResourceListChanged subscribes to resources/list_changed events.
func (c *Connection) ResourceListChanged() (<-chan mcpschema.ListChangedParams, func()) {
	return c.streams.resourceListChanged.Subscribe()
}

// ResourceUpdated subscribes to resources/updated events.
func (c *Connection) ResourceUpdated() (<-chan mcpschema.ResourceUpdatedParams, func()) {
	return c.streams.resourceUpdated.Subscribe()
}

// LogMessages subscribes to the peer's notifications/message stream.
func (c *Connection) LogMessages() (<-chan schema.LoggingMessageNotificationParams, func()) {
	return c.streams.logMessages.Subscribe()
}
