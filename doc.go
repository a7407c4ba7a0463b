// Package mcpconn provides the connection and correlation layer for the
// Model Context Protocol (MCP): it turns a raw duplex byte stream into a
// framed message channel, multiplexes that channel into many concurrently
// in-flight request/response pairs plus asynchronously delivered
// notification streams, negotiates capabilities during the initialize
// handshake and tears the whole thing down cleanly.
//
// The package glues the protocol types defined in the
// github.com/viant/mcp-protocol module with concrete transports.  The
// primary entry-point is the Registry, a named directory of peer
// connections:
//
//	reg := mcpconn.NewRegistry(&mcpconn.Options{Name: "myclient", Version: "1.0"})
//	conn, _ := reg.ConnectCommand(ctx, "files", "mcp-fs-server", nil)
//	result, _ := conn.Initialize(ctx)
//	_ = conn.Initialized(ctx)
//	tools, _ := conn.ListTools(ctx, nil)
//	_ = reg.ShutdownAll(ctx)
//
// Individual connections live in the client package; the answering peer
// role lives in the server package; newline framing and the correlation
// boundary live in frame and rpc respectively.
package mcpconn
