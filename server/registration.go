package server

import (
	"context"

	"github.com/viant/mcp-protocol/schema"
)

// Tool pairs a tool definition with its callback.
type Tool struct {
	Definition schema.Tool
	Call       func(ctx context.Context, args map[string]any) (*schema.CallToolResult, error)
}

// Resource pairs a resource definition with its reader.
type Resource struct {
	Definition schema.Resource
	Read       func(ctx context.Context, uri string) (*schema.ReadResourceResult, error)
}

// Prompt pairs a prompt definition with its resolver.
type Prompt struct {
	Definition schema.Prompt
	Get        func(ctx context.Context, args map[string]string) (*schema.GetPromptResult, error)
}

// RegisterTool adds a tool and flips the tools capability on.
func (h *Handler) RegisterTool(tool *Tool) {
	h.tools.Put(tool.Definition.Name, tool)
	h.capabilities.Tools = &schema.ServerCapabilitiesTools{}
}

// RegisterResource adds a resource keyed by its URI and flips the resources
// capability on.
func (h *Handler) RegisterResource(resource *Resource) {
	h.resources.Put(resource.Definition.Uri, resource)
	h.capabilities.Resources = &schema.ServerCapabilitiesResources{}
}

// RegisterPrompt adds a prompt and flips the prompts capability on.
func (h *Handler) RegisterPrompt(prompt *Prompt) {
	h.prompts.Put(prompt.Definition.Name, prompt)
	h.capabilities.Prompts = &schema.ServerCapabilitiesPrompts{}
}
