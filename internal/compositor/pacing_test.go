package compositor

import (
	"testing"
	"time"
)

func TestTargetFPSLadder(t *testing.T) {
	tests := []struct {
		refresh int
		want    int
	}{
		{0, 60},
		{-1, 60},
		{30, 30},
		{60, 60},
		{75, 37},
		{120, 60},
		{144, 48},
		{240, 80},
		{360, 120},
		{61, 30},
	}
	for _, tc := range tests {
		if got := TargetFPSForRefresh(tc.refresh); got != tc.want {
			t.Errorf("TargetFPSForRefresh(%d) = %d, want %d", tc.refresh, got, tc.want)
		}
	}
}

func TestPacerCapFPS(t *testing.T) {
	p := NewFramePacer(144)
	if p.TargetFPS() != 48 {
		t.Fatalf("target fps = %d, want 48", p.TargetFPS())
	}
	p.CapFPS(30)
	if p.TargetFPS() != 30 {
		t.Errorf("capped fps = %d, want 30", p.TargetFPS())
	}
	p.CapFPS(60) // a cap never raises the target
	if p.TargetFPS() != 30 {
		t.Errorf("fps after higher cap = %d, want 30", p.TargetFPS())
	}
	p.CapFPS(0) // ignored
	if p.TargetFPS() != 30 {
		t.Errorf("fps after zero cap = %d, want 30", p.TargetFPS())
	}
}

// fakeClock lets tests step wall-clock time deterministically.
type fakeClock struct {
	at time.Time
}

func (f *fakeClock) now() time.Time          { return f.at }
func (f *fakeClock) advance(d time.Duration) { f.at = f.at.Add(d) }

func newTestPacer(clock *fakeClock) *FramePacer {
	p := NewFramePacer(60)
	p.now = clock.now
	return p
}

func TestPacerInterpolation(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	p := newTestPacer(clock)
	p.Begin(time.Second)

	// Two samples 100ms apart.
	clock.advance(100 * time.Millisecond)
	p.Push(0.1)
	clock.advance(100 * time.Millisecond)
	p.Push(0.2)

	// Halfway between the samples' spacing past the newest sample the slope
	// extrapolates: 0.2 + 0.05.
	clock.advance(50 * time.Millisecond)
	got := p.ProgressNow()
	if got < 0.24 || got > 0.26 {
		t.Errorf("ProgressNow() = %v, want ~0.25", got)
	}
}

func TestPacerInterpolationClamped(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	p := newTestPacer(clock)
	p.Begin(time.Second)
	clock.advance(10 * time.Millisecond)
	p.Push(0.9)
	clock.advance(10 * time.Millisecond)
	p.Push(0.99)
	clock.advance(time.Second)
	if got := p.ProgressNow(); got != 1 {
		t.Errorf("extrapolated progress = %v, want clamped to 1", got)
	}
}

func TestPacerSingleSample(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	p := newTestPacer(clock)
	p.Begin(time.Second)
	p.Push(0.3)
	clock.advance(time.Second)
	if got := p.ProgressNow(); got != 0.3 {
		t.Errorf("ProgressNow() with one sample = %v, want 0.3", got)
	}
}

func TestPacerMonotonicSamples(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	p := newTestPacer(clock)
	p.Begin(time.Second)
	clock.advance(10 * time.Millisecond)
	p.Push(0.5)
	clock.advance(10 * time.Millisecond)
	p.Push(0.3) // regression must be ignored
	if got := p.ProgressNow(); got < 0.5 {
		t.Errorf("progress went backwards: %v", got)
	}
}

func TestPacerIdleDemotion(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	p := newTestPacer(clock)
	p.SetIdleTimeout(2 * time.Second)

	p.Begin(time.Second)
	if p.Phase() != PacerActive {
		t.Fatal("pacer not active after Begin")
	}
	p.Complete()
	if p.Phase() != PacerActive {
		t.Error("pacer should stay active within the idle timeout")
	}
	clock.advance(3 * time.Second)
	if p.Phase() != PacerIdle {
		t.Error("pacer should idle after the timeout")
	}
	if p.Interval() != idleInterval {
		t.Errorf("idle interval = %v, want %v", p.Interval(), idleInterval)
	}

	// A new transition resumes the active cadence.
	p.Begin(time.Second)
	if p.Phase() != PacerActive {
		t.Error("pacer should reactivate on Begin")
	}
	want := time.Second / 60
	if p.Interval() != want {
		t.Errorf("active interval = %v, want %v", p.Interval(), want)
	}
}

func TestPacerCancelStopsSamples(t *testing.T) {
	clock := &fakeClock{at: time.Unix(100, 0)}
	p := newTestPacer(clock)
	p.Begin(time.Second)
	p.Push(0.4)
	p.Cancel()
	if p.Running() {
		t.Error("pacer running after Cancel")
	}
	p.Push(0.9) // must be dropped
	if got := p.ProgressNow(); got != 1 {
		t.Errorf("cancelled pacer ProgressNow() = %v, want 1", got)
	}
}
