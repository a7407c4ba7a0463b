// Package server implements the answering side of the connection layer: a
// Handler attaches to a correlator and serves the protocol's request
// surface from registered tools, resources and prompts.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/viant/mcp-protocol/schema"

	"github.com/corewire/mcpconn/internal/collection"
	"github.com/corewire/mcpconn/rpc"
	mcpschema "github.com/corewire/mcpconn/schema"
)

// errNotInitialized is returned for requests received before the initialize
// handshake completed. Only initialize and ping are served earlier.
var errNotInitialized = &jsonrpc2.Error{
	Code:    jsonrpc2.CodeInvalidRequest,
	Message: "server not initialized",
}

// Handler answers protocol requests from registered capabilities. Register
// everything before Attach; the registries are not mutated concurrently
// afterwards.
type Handler struct {
	info            schema.Implementation
	capabilities    schema.ServerCapabilities
	protocolVersion string
	instructions    *string
	log             *slog.Logger

	tools         *collection.SyncMap[string, *Tool]
	resources     *collection.SyncMap[string, *Resource]
	prompts       *collection.SyncMap[string, *Prompt]
	subscriptions *collection.SyncMap[string, bool]

	mux          sync.Mutex
	initialized  bool
	clientInit   *schema.InitializeRequestParams
	loggingLevel *schema.LoggingLevel
	corr         rpc.Correlator
}

// New builds a Handler with the given identity.
func New(name, version string, options ...Option) *Handler {
	h := &Handler{
		info:            *schema.NewImplementation(name, version),
		protocolVersion: schema.LatestProtocolVersion,
		log:             slog.Default(),
		tools:           collection.NewSyncMap[string, *Tool](),
		resources:       collection.NewSyncMap[string, *Resource](),
		prompts:         collection.NewSyncMap[string, *Prompt](),
		subscriptions:   collection.NewSyncMap[string, bool](),
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Attach registers the handler's request surface on corr. The liveness
// probe and initialize are served in any state; everything else is rejected
// until the handshake completes.
func (h *Handler) Attach(corr rpc.Correlator) {
	h.mux.Lock()
	h.corr = corr
	h.mux.Unlock()

	corr.RegisterRequestHandler(schema.MethodPing, func(ctx context.Context, params json.RawMessage) (any, error) {
		return &schema.PingResult{}, nil
	})
	corr.RegisterRequestHandler(schema.MethodInitialize, h.initialize)
	corr.RegisterNotificationHandler(schema.MethodNotificationInitialized, func(ctx context.Context, params json.RawMessage) {
		h.mux.Lock()
		h.initialized = true
		h.mux.Unlock()
	})

	h.guarded(corr, schema.MethodToolsList, h.listTools)
	h.guarded(corr, schema.MethodToolsCall, h.callTool)
	h.guarded(corr, schema.MethodResourcesList, h.listResources)
	h.guarded(corr, schema.MethodResourcesRead, h.readResource)
	h.guarded(corr, schema.MethodPromptsList, h.listPrompts)
	h.guarded(corr, schema.MethodPromptsGet, h.getPrompt)
	h.guarded(corr, schema.MethodSubscribe, h.subscribe)
	h.guarded(corr, schema.MethodUnsubscribe, h.unsubscribe)
	h.guarded(corr, schema.MethodLoggingSetLevel, h.setLevel)
}

// guarded registers handler behind the handshake check.
func (h *Handler) guarded(corr rpc.Correlator, method string, handler rpc.RequestHandler) {
	corr.RegisterRequestHandler(method, func(ctx context.Context, params json.RawMessage) (any, error) {
		h.mux.Lock()
		ok := h.initialized
		h.mux.Unlock()
		if !ok {
			return nil, errNotInitialized
		}
		return handler(ctx, params)
	})
}

func (h *Handler) initialize(ctx context.Context, params json.RawMessage) (any, error) {
	var request schema.InitializeRequestParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &request); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("failed to parse: %v", err)}
		}
	}
	h.mux.Lock()
	h.clientInit = &request
	h.mux.Unlock()
	return &schema.InitializeResult{
		ProtocolVersion: h.protocolVersion,
		ServerInfo:      h.info,
		Capabilities:    h.capabilities,
		Instructions:    h.instructions,
	}, nil
}

func (h *Handler) listTools(ctx context.Context, params json.RawMessage) (any, error) {
	result := &schema.ListToolsResult{Tools: []schema.Tool{}}
	h.tools.Range(func(name string, tool *Tool) bool {
		result.Tools = append(result.Tools, tool.Definition)
		return true
	})
	return result, nil
}

func (h *Handler) callTool(ctx context.Context, params json.RawMessage) (any, error) {
	var request schema.CallToolRequestParams
	if err := json.Unmarshal(params, &request); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("failed to parse: %v", err)}
	}
	tool, ok := h.tools.Get(request.Name)
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "unknown tool: " + request.Name}
	}
	return tool.Call(ctx, request.Arguments)
}

func (h *Handler) listResources(ctx context.Context, params json.RawMessage) (any, error) {
	result := &schema.ListResourcesResult{Resources: []schema.Resource{}}
	h.resources.Range(func(uri string, resource *Resource) bool {
		result.Resources = append(result.Resources, resource.Definition)
		return true
	})
	return result, nil
}

func (h *Handler) readResource(ctx context.Context, params json.RawMessage) (any, error) {
	var request schema.ReadResourceRequestParams
	if err := json.Unmarshal(params, &request); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("failed to parse: %v", err)}
	}
	resource, ok := h.resources.Get(request.Uri)
	if !ok {
		return nil, &jsonrpc2.Error{Code: codeResourceNotFound, Message: "resource not found: " + request.Uri}
	}
	return resource.Read(ctx, request.Uri)
}

func (h *Handler) listPrompts(ctx context.Context, params json.RawMessage) (any, error) {
	result := &schema.ListPromptsResult{Prompts: []schema.Prompt{}}
	h.prompts.Range(func(name string, prompt *Prompt) bool {
		result.Prompts = append(result.Prompts, prompt.Definition)
		return true
	})
	return result, nil
}

func (h *Handler) getPrompt(ctx context.Context, params json.RawMessage) (any, error) {
	var request schema.GetPromptRequestParams
	if err := json.Unmarshal(params, &request); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("failed to parse: %v", err)}
	}
	prompt, ok := h.prompts.Get(request.Name)
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid prompt name: " + request.Name}
	}
	return prompt.Get(ctx, request.Arguments)
}

func (h *Handler) subscribe(ctx context.Context, params json.RawMessage) (any, error) {
	var request schema.SubscribeRequestParams
	if err := json.Unmarshal(params, &request); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("failed to parse: %v", err)}
	}
	h.subscriptions.Put(request.Uri, true)
	return &schema.SubscribeResult{}, nil
}

func (h *Handler) unsubscribe(ctx context.Context, params json.RawMessage) (any, error) {
	var request schema.UnsubscribeRequestParams
	if err := json.Unmarshal(params, &request); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("failed to parse: %v", err)}
	}
	h.subscriptions.Delete(request.Uri)
	return &schema.UnsubscribeResult{}, nil
}

func (h *Handler) setLevel(ctx context.Context, params json.RawMessage) (any, error) {
	var request schema.SetLevelRequestParams
	if err := json.Unmarshal(params, &request); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("failed to parse: %v", err)}
	}
	h.mux.Lock()
	level := request.Level
	h.loggingLevel = &level
	h.mux.Unlock()
	return &schema.SetLevelResult{}, nil
}

// NotifyToolListChanged announces that the tool catalog changed.
func (h *Handler) NotifyToolListChanged(ctx context.Context) error {
	return h.notify(ctx, mcpschema.MethodNotificationToolsListChanged, &mcpschema.ListChangedParams{})
}

// NotifyPromptListChanged announces that the prompt catalog changed.
func (h *Handler) NotifyPromptListChanged(ctx context.Context) error {
	return h.notify(ctx, mcpschema.MethodNotificationPromptsListChanged, &mcpschema.ListChangedParams{})
}

// NotifyResourceListChanged announces that the resource catalog changed.
func (h *Handler) NotifyResourceListChanged(ctx context.Context) error {
	return h.notify(ctx, mcpschema.MethodNotificationResourcesListChanged, &mcpschema.ListChangedParams{})
}

// NotifyResourceUpdated announces an update of uri, but only when the peer
// subscribed to it.
func (h *Handler) NotifyResourceUpdated(ctx context.Context, uri string) error {
	if _, ok := h.subscriptions.Get(uri); !ok {
		return nil
	}
	return h.notify(ctx, schema.MethodNotificationResourceUpdated, &mcpschema.ResourceUpdatedParams{Uri: uri})
}

func (h *Handler) notify(ctx context.Context, method string, params any) error {
	h.mux.Lock()
	corr := h.corr
	h.mux.Unlock()
	if corr == nil {
		return fmt.Errorf("%s: handler not attached", method)
	}
	return corr.SendNotification(ctx, method, params)
}

const codeResourceNotFound = -32002
