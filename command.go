package mcpconn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/corewire/mcpconn/frame"
)

// ErrSpawn marks a peer process that could not be started, as opposed to a
// peer that misbehaved after starting.
var ErrSpawn = errors.New("failed to start peer process")

// killGrace is how long Close waits for a child to exit after its stdin
// closed before killing it.
const killGrace = 3 * time.Second

// StartCommand spawns command with args and returns a duplex stream wired
// to the child's stdout and stdin. Start failures wrap ErrSpawn. Closing
// the stream closes the child's stdin and reaps the process.
func StartCommand(ctx context.Context, command string, args ...string) (io.ReadWriteCloser, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, command, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, command, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, command, err)
	}
	return &process{stream: frame.Combine(stdout, stdin), cmd: cmd}, nil
}

// process is the subprocess-backed transport. Reads observe EOF once the
// child exits, which propagates the close to the owning connection.
type process struct {
	stream io.ReadWriteCloser
	cmd    *exec.Cmd
}

func (p *process) Read(b []byte) (int, error)  { return p.stream.Read(b) }
func (p *process) Write(b []byte) (int, error) { return p.stream.Write(b) }

func (p *process) Close() error {
	err := p.stream.Close()
	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(killGrace):
		_ = p.cmd.Process.Kill()
		<-done
	}
	return err
}
