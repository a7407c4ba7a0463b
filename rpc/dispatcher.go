package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/corewire/mcpconn/internal/collection"
)

// dispatcher implements jsonrpc2.Handler. jsonrpc2 invokes Handle
// synchronously from its read loop, so inbound messages are dispatched
// strictly in arrival order with no parallel delivery.
type dispatcher struct {
	requests      *collection.SyncMap[string, RequestHandler]
	notifications *collection.SyncMap[string, NotificationHandler]
	log           *slog.Logger
}

func (d *dispatcher) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		d.handleNotification(ctx, req)
		return
	}
	d.handleRequest(ctx, conn, req)
}

func (d *dispatcher) handleRequest(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	handler, ok := d.requests.Get(req.Method)
	if !ok {
		d.reply(ctx, conn, req, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method %s not found", req.Method),
		})
		return
	}
	result, err := handler(ctx, rawParams(req))
	if err != nil {
		rpcErr, ok := err.(*jsonrpc2.Error)
		if !ok {
			rpcErr = &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
		}
		d.reply(ctx, conn, req, nil, rpcErr)
		return
	}
	d.reply(ctx, conn, req, result, nil)
}

func (d *dispatcher) reply(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, result any, rpcErr *jsonrpc2.Error) {
	var err error
	if rpcErr != nil {
		err = conn.ReplyWithError(ctx, req.ID, rpcErr)
	} else {
		err = conn.Reply(ctx, req.ID, result)
	}
	if err != nil {
		d.log.Debug("reply failed", "method", req.Method, "error", err)
	}
}

func (d *dispatcher) handleNotification(ctx context.Context, req *jsonrpc2.Request) {
	handler, ok := d.notifications.Get(req.Method)
	if !ok {
		// One-way message nobody listens for; drop it.
		d.log.Debug("unhandled notification", "method", req.Method)
		return
	}
	handler(ctx, rawParams(req))
}

func rawParams(req *jsonrpc2.Request) json.RawMessage {
	if req.Params == nil {
		return nil
	}
	return *req.Params
}
