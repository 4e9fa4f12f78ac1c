// If you are AI: This file implements per-connection kbps accounting and
// relay reconnect backoff pacing. kbps is sampled from byte counters on a
// fixed interval rather than computed per-write; pacing reuses the same
// token-bucket primitive (golang.org/x/time/rate) the rest of the pack
// pulls in for rate limiting.

package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Counter accumulates bytes transferred on one connection and samples them
// into an instantaneous kbps figure.
type Counter struct {
	bytesIn  atomic.Int64
	bytesOut atomic.Int64

	mu        sync.Mutex
	lastIn    int64
	lastOut   int64
	lastSample time.Time
	kbpsIn    float64
	kbpsOut   float64
}

// NewCounter creates a Counter with its sampling clock started now.
func NewCounter() *Counter {
	return &Counter{lastSample: time.Now()}
}

// AddIn records n bytes received.
func (c *Counter) AddIn(n int) { c.bytesIn.Add(int64(n)) }

// AddOut records n bytes sent.
func (c *Counter) AddOut(n int) { c.bytesOut.Add(int64(n)) }

// Sample recomputes kbps-in/out from the delta since the previous Sample
// call. Call on a fixed interval (e.g. once per second) from a reporting
// goroutine; Sample itself does not schedule anything.
func (c *Counter) Sample() (kbpsIn, kbpsOut float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(c.lastSample).Seconds()
	if elapsed <= 0 {
		return c.kbpsIn, c.kbpsOut
	}

	curIn := c.bytesIn.Load()
	curOut := c.bytesOut.Load()

	c.kbpsIn = float64(curIn-c.lastIn) * 8 / 1000 / elapsed
	c.kbpsOut = float64(curOut-c.lastOut) * 8 / 1000 / elapsed

	c.lastIn = curIn
	c.lastOut = curOut
	c.lastSample = now

	return c.kbpsIn, c.kbpsOut
}

// TotalIn returns the cumulative bytes received.
func (c *Counter) TotalIn() int64 { return c.bytesIn.Load() }

// TotalOut returns the cumulative bytes sent.
func (c *Counter) TotalOut() int64 { return c.bytesOut.Load() }

// Backoff paces relay reconnect attempts with a token bucket instead of a
// fixed sleep, so a burst of short-lived failures doesn't retry in lockstep
// with every other relay task.
type Backoff struct {
	limiter *rate.Limiter
}

// NewBackoff builds a Backoff allowing one reconnect attempt per interval,
// with a burst of 1 (no credit accrues while the task is healthy).
func NewBackoff(interval time.Duration) *Backoff {
	return &Backoff{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next reconnect attempt is permitted or ctx is
// cancelled.
func (b *Backoff) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}
