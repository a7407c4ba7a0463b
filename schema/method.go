// Package schema supplements github.com/viant/mcp-protocol/schema with the
// notification method names and parameter types this layer needs that are
// not yet defined upstream.
package schema

const (
	MethodNotificationToolsListChanged     = "notifications/tools/list_changed"
	MethodNotificationPromptsListChanged   = "notifications/prompts/list_changed"
	MethodNotificationResourcesListChanged = "notifications/resources/list_changed"
)
