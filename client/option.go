package client

import (
	"log/slog"

	"github.com/viant/mcp-protocol/schema"
)

// Option represents option
type Option func(c *Connection)

// WithCapabilities set capabilities
func WithCapabilities(capabilities schema.ClientCapabilities) Option {
	return func(c *Connection) {
		c.capabilities = capabilities
	}
}

// WithMetadata with meta
func WithMetadata(metadata map[string]any) Option {
	return func(c *Connection) {
		c.meta = metadata
	}
}

// WithProtocolVersion overrides the negotiated protocol version.
func WithProtocolVersion(version string) Option {
	return func(c *Connection) {
		c.protocolVersion = version
	}
}

// WithCapability appends capability providers; they install in the given
// order during construction.
func WithCapability(providers ...Capability) Option {
	return func(c *Connection) {
		c.providers = append(c.providers, providers...)
	}
}

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Connection) {
		c.log = log
	}
}
