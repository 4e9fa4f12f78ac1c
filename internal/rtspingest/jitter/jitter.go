// If you are AI: This file implements the timestamp jitter corrector (C6).
// Used independently per media type (video/audio); guarantees a
// non-decreasing output and clamps anomalous jumps so they do not
// contaminate future timestamps.

package jitter

// anomalyThreshold is 1 second at the RTP 90kHz clock.
const anomalyThreshold = 90000

// Corrector tracks one media type's running PTS correction state. The zero
// value is ready to use, matching the original's previous=0, pts=0 start.
type Corrector struct {
	previous uint32
	pts      uint32
}

// New returns a zeroed Corrector.
func New() *Corrector {
	return &Corrector{}
}

// Correct applies the jitter correction for an incoming RTP timestamp and
// returns the corrected, monotonic pts.
func (c *Corrector) Correct(incoming uint32) uint32 {
	delta := int64(incoming) - int64(c.previous)
	if delta < 0 {
		delta = 0
	}
	if delta > anomalyThreshold {
		delta = 0
	}

	c.previous = incoming
	c.pts += uint32(delta)
	return c.pts
}
