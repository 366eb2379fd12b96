package compositor

import (
	"math"
	"testing"
)

func TestApplyEasingBounds(t *testing.T) {
	modes := []EasingMode{EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut, "bogus"}
	for _, mode := range modes {
		if got := ApplyEasing(mode, 0); got != 0 {
			t.Errorf("%s: ApplyEasing(0) = %v, want 0", mode, got)
		}
		if got := ApplyEasing(mode, 1); got != 1 {
			t.Errorf("%s: ApplyEasing(1) = %v, want 1", mode, got)
		}
		if got := ApplyEasing(mode, -0.5); got != 0 {
			t.Errorf("%s: ApplyEasing(-0.5) = %v, want 0", mode, got)
		}
		if got := ApplyEasing(mode, 1.5); got != 1 {
			t.Errorf("%s: ApplyEasing(1.5) = %v, want 1", mode, got)
		}
	}
}

func TestApplyEasingMidpoints(t *testing.T) {
	tests := []struct {
		mode EasingMode
		t    float32
		want float32
	}{
		{EasingLinear, 0.25, 0.25},
		{EasingLinear, 0.5, 0.5},
		{EasingEaseIn, 0.5, 0.25},
		{EasingEaseOut, 0.5, 0.75},
		{EasingEaseInOut, 0.5, 0.5},
		{EasingEaseInOut, 0.25, 0.125},
	}
	for _, tc := range tests {
		got := ApplyEasing(tc.mode, tc.t)
		if math.Abs(float64(got-tc.want)) > 1e-6 {
			t.Errorf("ApplyEasing(%s, %v) = %v, want %v", tc.mode, tc.t, got, tc.want)
		}
	}
}

func TestApplyEasingMonotonic(t *testing.T) {
	modes := []EasingMode{EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut}
	for _, mode := range modes {
		prev := float32(-1)
		for i := 0; i <= 100; i++ {
			v := ApplyEasing(mode, float32(i)/100)
			if v < prev {
				t.Fatalf("%s not monotonic at t=%v: %v < %v", mode, float32(i)/100, v, prev)
			}
			prev = v
		}
	}
}
