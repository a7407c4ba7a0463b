package server

import (
	"context"

	"github.com/viant/mcp-protocol/schema"
)

// Logger emits protocol log notifications to the connected peer, filtered
// by the level the peer selected through logging/setLevel.
type Logger struct {
	name    string
	handler *Handler
}

// Logger returns a named protocol logger bound to this handler.
func (h *Handler) Logger(name string) *Logger {
	return &Logger{name: name, handler: h}
}

func (l *Logger) log(ctx context.Context, level schema.LoggingLevel, data any) error {
	h := l.handler
	h.mux.Lock()
	current := h.loggingLevel
	h.mux.Unlock()
	if current == nil || current.Ordinal() > level.Ordinal() {
		//skip logging since level is too verbose
		return nil
	}
	params := schema.LoggingMessageNotificationParams{
		Level:  level,
		Logger: &l.name,
		Data:   data,
	}
	return h.notify(ctx, schema.MethodNotificationMessage, &params)
}

func (l *Logger) Debug(ctx context.Context, data any) error {
	return l.log(ctx, schema.LoggingLevelDebug, data)
}

func (l *Logger) Info(ctx context.Context, data any) error {
	return l.log(ctx, schema.Info, data)
}

func (l *Logger) Notice(ctx context.Context, data any) error {
	return l.log(ctx, schema.Notice, data)
}

func (l *Logger) Warning(ctx context.Context, data any) error {
	return l.log(ctx, schema.Warning, data)
}

func (l *Logger) Error(ctx context.Context, data any) error {
	return l.log(ctx, schema.LoggingLevelError, data)
}

func (l *Logger) Critical(ctx context.Context, data any) error {
	return l.log(ctx, schema.Critical, data)
}

func (l *Logger) Alert(ctx context.Context, data any) error {
	return l.log(ctx, schema.Alert, data)
}

func (l *Logger) Emergency(ctx context.Context, data any) error {
	return l.log(ctx, schema.Emergency, data)
}
