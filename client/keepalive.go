package client

import (
	"context"
	"sync"
	"time"
)

// DefaultProbeTimeout bounds a liveness probe when the caller passes no
// positive timeout.
const DefaultProbeTimeout = time.Second

// Probe sends a liveness probe and races it against timeout. It returns
// true if the peer answered first and false once the timer fires; a probe
// outcome arriving after the timer is discarded, never surfaced to a caller
// or logged.
func (c *Connection) Probe(ctx context.Context, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	// Buffered so the late resolution has somewhere to go when nobody is
	// left to receive it.
	outcome := make(chan error, 1)
	go func() {
		_, err := c.Ping(ctx)
		outcome <- err
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-outcome:
		return err == nil
	case <-timer.C:
		return false
	}
}

// KeepaliveMonitor probes a connection on a fixed interval, independent of
// normal request flow, and reports when the peer stops answering.
type KeepaliveMonitor struct {
	conn      *Connection
	interval  time.Duration
	timeout   time.Duration
	threshold int
	onStale   func(failures int)

	stopOnce sync.Once
	stop     chan struct{}
}

// KeepaliveOption configures a KeepaliveMonitor.
type KeepaliveOption func(m *KeepaliveMonitor)

// WithInterval sets the probe period.
func WithInterval(interval time.Duration) KeepaliveOption {
	return func(m *KeepaliveMonitor) {
		m.interval = interval
	}
}

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(timeout time.Duration) KeepaliveOption {
	return func(m *KeepaliveMonitor) {
		m.timeout = timeout
	}
}

// WithFailureThreshold sets how many consecutive failed probes mark the
// peer stale.
func WithFailureThreshold(threshold int) KeepaliveOption {
	return func(m *KeepaliveMonitor) {
		m.threshold = threshold
	}
}

// WithOnStale sets the callback invoked once the failure threshold is
// reached.
func WithOnStale(onStale func(failures int)) KeepaliveOption {
	return func(m *KeepaliveMonitor) {
		m.onStale = onStale
	}
}

// NewKeepaliveMonitor builds a monitor for conn. Call Start to begin
// probing.
func NewKeepaliveMonitor(conn *Connection, options ...KeepaliveOption) *KeepaliveMonitor {
	m := &KeepaliveMonitor{
		conn:      conn,
		interval:  60 * time.Second,
		timeout:   DefaultProbeTimeout,
		threshold: 1,
		stop:      make(chan struct{}),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Start launches the probe loop. The loop ends when Stop is called, ctx is
// cancelled, or the connection closes.
func (m *KeepaliveMonitor) Start(ctx context.Context) {
	go m.loop(ctx)
}

// Stop ends the probe loop; safe to call more than once.
func (m *KeepaliveMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *KeepaliveMonitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-m.conn.Done():
			return
		case <-ticker.C:
			if m.conn.Probe(ctx, m.timeout) {
				failures = 0
				continue
			}
			failures++
			m.conn.log.Warn("keepalive probe failed", "name", m.conn.name, "failures", failures)
			if failures >= m.threshold && m.onStale != nil {
				m.onStale(failures)
			}
		}
	}
}
