// If you are AI: Tests for the jitter corrector's monotonicity and anomaly clamp.

package jitter

import "testing"

func TestAnomalyClamp(t *testing.T) {
	c := New()
	inputs := []uint32{1000, 2000, 2000 + 100000, 2000 + 100000 + 500}

	var out []uint32
	for _, in := range inputs {
		out = append(out, c.Correct(in))
	}

	pts0 := out[0]
	want := []uint32{pts0, pts0 + 1000, pts0 + 1000, pts0 + 1500}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestOutputNonDecreasing(t *testing.T) {
	c := New()
	inputs := []uint32{100, 50, 40000, 999999999, 1000000001}
	var prev uint32
	for i, in := range inputs {
		pts := c.Correct(in)
		if i > 0 && pts < prev {
			t.Fatalf("pts decreased: %d -> %d at input %d", prev, pts, in)
		}
		prev = pts
	}
}
