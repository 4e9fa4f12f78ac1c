// If you are AI: Tests for the connection manager's ownership and sweep guarantees.

package connmgr

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeConn struct {
	closed  atomic.Bool
	cycleFn func(ctx context.Context) error
}

func (f *fakeConn) DoCycle(ctx context.Context) error { return f.cycleFn(ctx) }
func (f *fakeConn) Close() error                      { f.closed.Store(true); return nil }

func TestManagerDestroysExactlyOnce(t *testing.T) {
	m := New(10 * time.Millisecond)
	defer m.Shutdown()

	fc := &fakeConn{cycleFn: func(ctx context.Context) error { return nil }}
	m.Add(context.Background(), fc)

	deadline := time.After(time.Second)
	for {
		if fc.closed.Load() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("connection was never destroyed by the manager")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestManagerExpireCancelsCycle(t *testing.T) {
	m := New(10 * time.Millisecond)
	defer m.Shutdown()

	observed := make(chan struct{})
	fc := &fakeConn{cycleFn: func(ctx context.Context) error {
		<-ctx.Done()
		close(observed)
		return ctx.Err()
	}}
	tk := m.Add(context.Background(), fc)

	Expire(tk)

	select {
	case <-observed:
	case <-time.After(time.Second):
		t.Fatal("expire did not cancel the cycle")
	}
}
