package compositor

import (
	"testing"
	"time"
)

func newTestCompositor() *Compositor {
	return New(Options{RefreshRate: 60, NoDesync: true})
}

func TestStartSupersedesActiveTransition(t *testing.T) {
	c := newTestCompositor()
	aFinished, bFinished := 0, 0

	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{
		OnFinished: func() { aFinished++ },
	})
	if c.ActiveKind() != KindCrossfade {
		t.Fatalf("active kind = %v, want crossfade", c.ActiveKind())
	}

	dest := rgba(8, 8)
	c.StartSlide(rgba(8, 8), dest, DirLeft, TransitionOptions{
		OnFinished: func() { bFinished++ },
	})
	if c.ActiveKind() != KindSlide {
		t.Fatalf("active kind = %v, want slide", c.ActiveKind())
	}

	c.Update(1)
	if aFinished != 0 {
		t.Errorf("superseded transition fired OnFinished %d times", aFinished)
	}
	if bFinished != 1 {
		t.Errorf("replacement transition fired OnFinished %d times, want 1", bFinished)
	}
	if c.Active() {
		t.Error("transition still active after completion")
	}
	if c.BaseImage() != dest {
		t.Error("base image not promoted to the destination")
	}
}

func TestOnFinishedFiresOnce(t *testing.T) {
	c := newTestCompositor()
	finished := 0
	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{
		OnFinished: func() { finished++ },
	})
	c.Update(1)
	c.Update(1)
	if finished != 1 {
		t.Errorf("OnFinished fired %d times, want 1", finished)
	}
}

func TestCancelSnapToNew(t *testing.T) {
	c := newTestCompositor()
	finished, cancelled := 0, 0
	dest := rgba(8, 8)
	c.StartWipe(rgba(8, 8), dest, DirRight, TransitionOptions{
		OnFinished:  func() { finished++ },
		OnCancelled: func() { cancelled++ },
	})
	c.Update(0.5)
	c.CancelCurrentTransition(true)

	if c.Active() {
		t.Error("transition active after cancel")
	}
	if c.BaseImage() != dest {
		t.Error("snapToNew did not promote the destination")
	}
	if finished != 0 {
		t.Errorf("OnFinished fired %d times on cancel, want 0", finished)
	}
	if cancelled != 1 {
		t.Errorf("OnCancelled fired %d times, want 1", cancelled)
	}
	if !c.pendingPromote {
		t.Error("texture promotion not deferred to the next paint")
	}
}

func TestCancelWithoutSnap(t *testing.T) {
	c := newTestCompositor()
	base := rgba(8, 8)
	c.SetBaseImage(base)
	c.StartCrossfade(base, rgba(8, 8), TransitionOptions{})
	c.Update(0.5)
	c.CancelCurrentTransition(false)

	if c.Active() {
		t.Error("transition active after cancel")
	}
	if c.BaseImage() != base {
		t.Error("base image changed without snapToNew")
	}
	if !c.pendingRelease {
		t.Error("transition texture release not deferred")
	}
}

func TestCancelWhenIdleIsNoop(t *testing.T) {
	c := newTestCompositor()
	c.CancelCurrentTransition(true)
	c.CancelCurrentTransition(false)
	if c.Active() {
		t.Error("cancel on idle compositor made it active")
	}
}

func TestInvalidStartLeavesNoState(t *testing.T) {
	c := newTestCompositor()

	c.StartCrossfade(rgba(8, 8), nil, TransitionOptions{})
	if c.Active() {
		t.Error("nil destination started a transition")
	}

	c.StartBlockFlip(rgba(8, 8), rgba(8, 8), 0, 4, TransitionOptions{})
	if c.Active() {
		t.Error("invalid grid started a transition")
	}

	// An invalid request must not cancel a running transition either.
	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{})
	c.StartRaindrops(rgba(8, 8), rgba(8, 8), 99, 1, TransitionOptions{})
	if c.ActiveKind() != KindCrossfade {
		t.Errorf("active kind = %v, want the prior crossfade", c.ActiveKind())
	}
}

func TestStartWithoutOldShowsDestination(t *testing.T) {
	c := newTestCompositor()
	finished := 0
	dest := rgba(8, 8)
	c.StartCrossfade(nil, dest, TransitionOptions{
		OnFinished: func() { finished++ },
	})
	if c.Active() {
		t.Error("missing old image should complete immediately")
	}
	if c.BaseImage() != dest {
		t.Error("destination not shown")
	}
	if finished != 1 {
		t.Errorf("OnFinished fired %d times, want 1", finished)
	}
}

func TestUpdateProgressMonotonic(t *testing.T) {
	c := newTestCompositor()
	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{})
	c.Update(0.6)
	c.Update(0.4)
	if c.state.Progress < 0.6 {
		t.Errorf("progress regressed to %v", c.state.Progress)
	}
}

func TestTransitionDefaults(t *testing.T) {
	c := newTestCompositor()
	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{})
	if c.duration != time.Second {
		t.Errorf("default duration = %v, want 1s", c.duration)
	}
	if c.easing != EasingLinear {
		t.Errorf("default easing = %v, want linear", c.easing)
	}
	if c.PacedDuration() != time.Second {
		t.Errorf("paced duration = %v, want 1s with desync off", c.PacedDuration())
	}
}

func TestEffectiveProgressDesyncShift(t *testing.T) {
	c := newTestCompositor()
	c.desyncDelay = 250 * time.Millisecond
	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{Duration: time.Second})

	if got := c.PacedDuration(); got != 1250*time.Millisecond {
		t.Fatalf("paced duration = %v, want 1.25s", got)
	}
	// Raw progress runs over the padded duration; the first 250ms map to 0.
	if got := c.effectiveProgress(0.2); got != 0 {
		t.Errorf("effectiveProgress(0.2) = %v, want 0 during the delay", got)
	}
	if got := c.effectiveProgress(0.6); got < 0.49 || got > 0.51 {
		t.Errorf("effectiveProgress(0.6) = %v, want ~0.5", got)
	}
	if got := c.effectiveProgress(1); got != 1 {
		t.Errorf("effectiveProgress(1) = %v, want 1", got)
	}
}

func TestEffectiveProgressAppliesEasing(t *testing.T) {
	c := newTestCompositor()
	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{
		Duration: time.Second,
		Easing:   EasingEaseIn,
	})
	if got := c.effectiveProgress(0.5); got != 0.25 {
		t.Errorf("eased progress = %v, want 0.25", got)
	}
}

func TestStartByKindCoversAllEffects(t *testing.T) {
	c := newTestCompositor()
	for kind := KindCrossfade; kind <= KindParticle; kind++ {
		c.StartByKind(kind, rgba(8, 8), rgba(8, 8), TransitionOptions{})
		if c.ActiveKind() != kind {
			t.Errorf("StartByKind(%v) left active kind %v", kind, c.ActiveKind())
		}
	}
}

func TestDesyncDelayBounded(t *testing.T) {
	for i := 0; i < 20; i++ {
		c := New(Options{RefreshRate: 60})
		if d := c.DesyncDelay(); d < 0 || d >= maxDesyncDelay {
			t.Fatalf("desync delay %v outside [0, %v)", d, maxDesyncDelay)
		}
	}
}

func TestCleanupBeforeInitIsSafe(t *testing.T) {
	c := newTestCompositor()
	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{})
	c.Cleanup()
	c.Cleanup()
	if c.Active() {
		t.Error("transition survived Cleanup")
	}
}

// A paint landing between two coarse Update ticks must not repeat the last
// pushed progress; the pacer's wall-clock interpolation carries it forward.
func TestPaintProgressAdvancesBetweenUpdates(t *testing.T) {
	c := newTestCompositor()
	clock := &fakeClock{at: time.Unix(100, 0)}
	c.Pacer().now = clock.now

	c.StartCrossfade(rgba(8, 8), rgba(8, 8), TransitionOptions{Duration: time.Second})
	clock.advance(100 * time.Millisecond)
	c.Update(0.2)
	clock.advance(100 * time.Millisecond)
	c.Update(0.4)

	// Halfway into the next tick interval the rendered progress follows the
	// clock past the last sample.
	clock.advance(50 * time.Millisecond)
	c.syncProgress()
	if got := c.state.Progress; got < 0.44 || got > 0.56 {
		t.Errorf("painted progress = %v, want ~0.5", got)
	}

	// Never backwards: a sync cannot undo a further-along Update.
	c.Update(0.9)
	before := c.state.Progress
	c.syncProgress()
	if c.state.Progress < before {
		t.Errorf("painted progress went backwards: %v -> %v", before, c.state.Progress)
	}
}

func TestSyncProgressIdleIsNoop(t *testing.T) {
	c := newTestCompositor()
	c.syncProgress()
	if c.Active() {
		t.Error("syncProgress activated a transition from idle")
	}
}
