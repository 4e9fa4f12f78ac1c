// If you are AI: This file implements the A/V alignment cache (C7).
// Holds at most one pending audio frame-group until the next video tick
// arrives with a greater dts, then flushes with interpolated per-sample
// timestamps. The interpolation divides by 90 to convert the RTP 90kHz
// clock to milliseconds.

package avcache

// Sample is one emitted audio packet: a millisecond timestamp and its
// payload slice (callers own slicing of the original frame-group payload).
type Sample struct {
	TimestampMS uint32
	Payload     []byte
}

// pending holds one not-yet-flushed audio frame-group.
type pending struct {
	dts      uint32
	payloads [][]byte
}

// Cache holds the pending audio group and flushes it against video ticks.
type Cache struct {
	p *pending
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{}
}

// PutAudio replaces any existing pending group with a new one. The previous
// group should already have been flushed by a video tick; if it wasn't, it
// is silently dropped, matching the original's replace-on-new-group
// behavior.
func (c *Cache) PutAudio(dts uint32, payloads [][]byte) {
	c.p = &pending{dts: dts, payloads: payloads}
}

// FlushOnVideo is called when a video tick arrives with dts videoDts. If a
// pending audio group with a smaller dts exists, it is flushed as N samples
// with evenly interpolated timestamps and the pending slot is cleared.
// Returns nil if there is nothing to flush.
func (c *Cache) FlushOnVideo(videoDts uint32) []Sample {
	if c.p == nil || c.p.dts >= videoDts {
		return nil
	}

	n := len(c.p.payloads)
	da := int64(c.p.dts)
	dv := int64(videoDts)
	perSample := (dv - da) / int64(n)
	samples := make([]Sample, n)
	for i := 0; i < n; i++ {
		ts := uint32((da + perSample*int64(i)) / 90)
		samples[i] = Sample{TimestampMS: ts, Payload: c.p.payloads[i]}
	}

	c.p = nil
	return samples
}
