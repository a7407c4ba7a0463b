package client

import (
	"context"
	"encoding/json"

	"github.com/viant/mcp-protocol/schema"
)

// Capability is an optional client-side feature installed into a connection
// at construction. Install runs before the handshake; it registers the
// provider's handlers on the connection's correlator and declares the
// matching capability flags. Construction order determines registration
// order.
type Capability interface {
	Install(c *Connection) error
}

// Roots exposes a fixed set of filesystem roots to the peer and answers the
// peer's root listing requests.
type Roots struct {
	Roots []schema.Root
}

// Install declares the roots capability and registers the listing handler.
func (r *Roots) Install(c *Connection) error {
	c.Capabilities().Roots = &schema.ClientCapabilitiesRoots{}
	c.Correlator().RegisterRequestHandler(schema.MethodRootsList, func(ctx context.Context, params json.RawMessage) (any, error) {
		return &schema.ListRootsResult{Roots: r.Roots}, nil
	})
	return nil
}
