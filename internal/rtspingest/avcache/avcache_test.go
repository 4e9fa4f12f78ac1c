// If you are AI: Tests for A/V alignment cache flush timing.

package avcache

import "testing"

func TestFlushInterpolatesTimestamps(t *testing.T) {
	c := New()
	c.PutAudio(900, [][]byte{{1}, {2}, {3}})

	samples := c.FlushOnVideo(1200)
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	want := []uint32{10, 11, 12}
	for i, s := range samples {
		if s.TimestampMS != want[i] {
			t.Fatalf("sample %d ts = %d, want %d", i, s.TimestampMS, want[i])
		}
	}
}

func TestFlushNoOpWithoutPending(t *testing.T) {
	c := New()
	if s := c.FlushOnVideo(1000); s != nil {
		t.Fatalf("FlushOnVideo() = %v, want nil", s)
	}
}

func TestNewGroupReplacesUnflushed(t *testing.T) {
	c := New()
	c.PutAudio(100, [][]byte{{1}})
	c.PutAudio(200, [][]byte{{2}, {3}})

	samples := c.FlushOnVideo(400)
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2 (the most recent group)", len(samples))
	}
}
