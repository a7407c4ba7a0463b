package server

import (
	"log/slog"

	"github.com/viant/mcp-protocol/schema"
)

// Option configures a Handler.
type Option func(h *Handler)

// WithCapabilities sets the declared server capabilities.
func WithCapabilities(capabilities schema.ServerCapabilities) Option {
	return func(h *Handler) {
		h.capabilities = capabilities
	}
}

// WithProtocolVersion overrides the protocol version offered during the
// handshake.
func WithProtocolVersion(version string) Option {
	return func(h *Handler) {
		h.protocolVersion = version
	}
}

// WithInstructions sets the instructions returned from initialize.
func WithInstructions(instructions string) Option {
	return func(h *Handler) {
		h.instructions = &instructions
	}
}

// WithLogger sets the logger for handler diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		h.log = log
	}
}
