// If you are AI: This file implements the connection lifecycle manager (C3).
// It owns one task per connection, routes disposal through a pending-delete
// sweep, and enforces single ownership, generalizing relay.Manager's
// fixed-task-set pattern to a churning set of inbound connections.

package connmgr

import (
	"context"
	"net"
	"sync"
	"time"

	"nonchalant/internal/task"
)

// Conn is the subclass contract: DoCycle runs until the connection should
// close, naturally or with an error. Manager wraps it in a Task.
type Conn interface {
	DoCycle(ctx context.Context) error
	Close() error
}

// entry pairs a Conn with its owning task.
type entry struct {
	conn Conn
	t    *task.Task
}

// Manager owns every connection's task and guarantees one-time cleanup.
type Manager struct {
	mu      sync.Mutex
	live    map[*entry]struct{}
	pending []*entry

	sweepInterval time.Duration
	stopSweep     chan struct{}
	sweepDone     chan struct{}
}

// New creates a Manager whose pending-delete sweep runs every interval.
// A zero interval defaults to 200ms.
func New(interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	m := &Manager{
		live:          make(map[*entry]struct{}),
		sweepInterval: interval,
		stopSweep:     make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Add registers conn, launches its task, and returns the task handle so the
// caller can Interrupt/Stop it directly (e.g. for Expire).
func (m *Manager) Add(parent context.Context, conn Conn) *task.Task {
	e := &entry{conn: conn}
	e.t = task.New(func(ctx context.Context) error {
		err := conn.DoCycle(ctx)
		m.remove(e)
		return err
	}, 0)

	m.mu.Lock()
	m.live[e] = struct{}{}
	m.mu.Unlock()

	_ = e.t.Start(parent)
	return e.t
}

// remove moves e from live to the pending-delete queue. Called by the
// per-connection trampoline when DoCycle returns.
func (m *Manager) remove(e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[e]; !ok {
		return
	}
	delete(m.live, e)
	m.pending = append(m.pending, e)
}

// sweepLoop periodically destroys pending entries once their task has
// fully returned.
func (m *Manager) sweepLoop() {
	defer close(m.sweepDone)
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopSweep:
			m.sweepOnce()
			return
		case <-ticker.C:
			m.sweepOnce()
		}
	}
}

func (m *Manager) sweepOnce() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, e := range pending {
		_ = e.t.Stop()
		_ = e.conn.Close()
	}
}

// Count returns the number of live (not yet pending-delete) connections.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Shutdown stops the sweep loop and destroys every remaining connection,
// live or pending.
func (m *Manager) Shutdown() {
	close(m.stopSweep)
	<-m.sweepDone

	m.mu.Lock()
	all := make([]*entry, 0, len(m.live)+len(m.pending))
	for e := range m.live {
		all = append(all, e)
	}
	all = append(all, m.pending...)
	m.live = make(map[*entry]struct{})
	m.pending = nil
	m.mu.Unlock()

	for _, e := range all {
		_ = e.t.Stop()
		_ = e.conn.Close()
	}
}

// Expire is a soft-kill: it interrupts the connection's task so its cycle
// observes cancellation at its next suspension point.
func Expire(t *task.Task) {
	t.Interrupt()
}

// SetTCPNoDelay and SetSocketBuffer are small helpers subclasses may use
// from within DoCycle before entering their read loop; they translate
// directly to the platform socket options and are no-ops on non-TCP conns.
func SetTCPNoDelay(c net.Conn, v bool) error {
	if tc, ok := c.(*net.TCPConn); ok {
		return tc.SetNoDelay(v)
	}
	return nil
}

func SetSocketBuffer(c net.Conn, bytes int) error {
	if tc, ok := c.(*net.TCPConn); ok {
		if err := tc.SetReadBuffer(bytes); err != nil {
			return err
		}
		return tc.SetWriteBuffer(bytes)
	}
	return nil
}
