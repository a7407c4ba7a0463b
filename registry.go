package mcpconn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/corewire/mcpconn/client"
	"github.com/corewire/mcpconn/frame"
	"github.com/corewire/mcpconn/rpc"
)

// ErrUnknownConnection reports a registry operation on a name with no live
// connection. Disconnecting an absent name is a hard error so typos and
// double-shutdowns do not pass silently.
var ErrUnknownConnection = errors.New("unknown connection")

// Registry is a client-side directory of named peer connections. The
// mapping is owned by the registry instance and guarded by one mutex; there
// is no process-wide singleton.
type Registry struct {
	options *Options
	log     *slog.Logger

	mux   sync.Mutex
	conns map[string]*client.Connection
}

// NewRegistry builds an empty registry. options may be nil for defaults.
func NewRegistry(options *Options) *Registry {
	if options == nil {
		options = &Options{}
	}
	options.Init()
	return &Registry{
		options: options,
		log:     slog.Default(),
		conns:   make(map[string]*client.Connection),
	}
}

// Connect wraps an already-open duplex stream into a connection and
// registers it under name. An existing entry under the same name is
// replaced silently; the caller owns the replaced connection's shutdown.
func (r *Registry) Connect(ctx context.Context, name string, stream io.ReadWriteCloser, options ...client.Option) (*client.Connection, error) {
	corr := rpc.NewConn(ctx, frame.NewStream(stream), rpc.WithLogger(r.log))
	conn, err := client.New(r.options.Name, r.options.Version, corr, options...)
	if err != nil {
		_ = corr.Close()
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	r.mux.Lock()
	r.conns[name] = conn
	r.mux.Unlock()
	r.log.Debug("connection registered", "name", name, "id", conn.ID())
	return conn, nil
}

// ConnectCommand spawns command args, wires its stdio through the frame
// codec and registers the resulting connection under name. A process that
// cannot start surfaces as ErrSpawn, distinct from any later peer failure.
func (r *Registry) ConnectCommand(ctx context.Context, name string, command string, args []string, options ...client.Option) (*client.Connection, error) {
	stream, err := StartCommand(ctx, command, args...)
	if err != nil {
		return nil, err
	}
	return r.Connect(ctx, name, stream, options...)
}

// Disconnect removes the named connection and shuts it down. The entry is
// removed and the connection stops accepting calls atomically with respect
// to other registry operations.
func (r *Registry) Disconnect(ctx context.Context, name string) error {
	r.mux.Lock()
	conn, ok := r.conns[name]
	if !ok {
		r.mux.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownConnection, name)
	}
	delete(r.conns, name)
	err := conn.Shutdown(ctx)
	r.mux.Unlock()
	if err != nil {
		return fmt.Errorf("disconnect %s: %w", name, err)
	}
	return nil
}

// ShutdownAll shuts every registered connection down concurrently and
// clears the registry. One connection's failure never prevents the others
// from closing; failures are aggregated into the returned error.
func (r *Registry) ShutdownAll(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()

	errs := make([]error, len(r.conns))
	var wg sync.WaitGroup
	i := 0
	for name, conn := range r.conns {
		wg.Add(1)
		go func(i int, name string, conn *client.Connection) {
			defer wg.Done()
			if err := conn.Shutdown(ctx); err != nil {
				errs[i] = fmt.Errorf("shutdown %s: %w", name, err)
			}
		}(i, name, conn)
		i++
	}
	wg.Wait()
	r.conns = make(map[string]*client.Connection)
	return errors.Join(errs...)
}

// Lookup returns the connection registered under name.
func (r *Registry) Lookup(name string) (*client.Connection, bool) {
	r.mux.Lock()
	defer r.mux.Unlock()
	conn, ok := r.conns[name]
	return conn, ok
}

// Names lists the currently registered connection names.
func (r *Registry) Names() []string {
	r.mux.Lock()
	defer r.mux.Unlock()
	names := make([]string, 0, len(r.conns))
	for name := range r.conns {
		names = append(names, name)
	}
	return names
}

// Len reports how many connections are registered.
func (r *Registry) Len() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.conns)
}

// WithLogger sets the registry logger.
func (r *Registry) WithLogger(log *slog.Logger) *Registry {
	r.log = log
	return r
}
