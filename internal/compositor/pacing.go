package compositor

import (
	"sync"
	"time"
)

// PacerPhase is the frame pacer's power state.
type PacerPhase int

const (
	PacerIdle PacerPhase = iota
	PacerActive
)

// DefaultIdleTimeout is how long the pacer stays at full cadence after the
// last transition before dropping to the idle interval.
const DefaultIdleTimeout = 5 * time.Second

// idleInterval is the repaint cadence while no transition is running. The
// screen is static; one frame a second keeps the window alive cheaply.
const idleInterval = time.Second

type sample struct {
	at       time.Time
	progress float32
}

// FramePacer decouples animation ticks from paint callbacks. Animation
// progress samples are pushed at whatever cadence the driver manages;
// ProgressNow interpolates between the last two samples by wall clock so the
// paint loop renders smoothly even when ticks are coarse or jittery. The
// pacer also owns the active/idle phase and the target repaint interval.
type FramePacer struct {
	mu sync.Mutex

	phase       PacerPhase
	targetFPS   int
	idleTimeout time.Duration
	idleAt      time.Time

	running  bool
	start    time.Time
	duration time.Duration
	s0, s1   sample
	haveTwo  bool

	// now is the clock, replaceable in tests.
	now func() time.Time
}

func NewFramePacer(refreshRate int) *FramePacer {
	p := &FramePacer{
		phase:       PacerIdle,
		targetFPS:   TargetFPSForRefresh(refreshRate),
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
	}
	return p
}

// TargetFPSForRefresh derives the render frame rate from the display refresh
// rate: match up to 60Hz, half up to 120Hz, a third above that, floor 30.
// Displays reporting no refresh rate (headless, some virtual outputs) are
// treated as 60Hz.
func TargetFPSForRefresh(refresh int) int {
	if refresh <= 0 {
		return 60
	}
	var fps int
	switch {
	case refresh <= 60:
		fps = refresh
	case refresh <= 120:
		fps = refresh / 2
	default:
		fps = refresh / 3
	}
	if fps < 30 {
		fps = 30
	}
	return fps
}

func (p *FramePacer) TargetFPS() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.targetFPS
}

// CapFPS lowers the target frame rate to at most limit. Non-positive limits
// are ignored, as are limits above the refresh-derived target.
func (p *FramePacer) CapFPS(limit int) {
	if limit <= 0 {
		return
	}
	p.mu.Lock()
	if limit < p.targetFPS {
		p.targetFPS = limit
	}
	p.mu.Unlock()
}

// SetIdleTimeout overrides the idle timeout; non-positive values keep the
// default.
func (p *FramePacer) SetIdleTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	p.idleTimeout = d
	p.mu.Unlock()
}

// Begin starts a new frame-interpolation context for a transition of the
// given duration and moves the pacer to the active phase.
func (p *FramePacer) Begin(duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.running = true
	p.start = now
	p.duration = duration
	p.s0 = sample{at: now, progress: 0}
	p.s1 = p.s0
	p.haveTwo = false
	p.phase = PacerActive
}

// Push records a timestamped animation sample.
func (p *FramePacer) Push(progress float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	if progress < p.s1.progress {
		progress = p.s1.progress
	}
	p.s0 = p.s1
	p.s1 = sample{at: p.now(), progress: progress}
	p.haveTwo = true
}

// ProgressNow returns the interpolated progress at the current wall-clock
// instant. Between the last two samples it interpolates linearly; past the
// newest sample it extrapolates at the same slope, clamped to [0,1].
func (p *FramePacer) ProgressNow() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return 1
	}
	now := p.now()
	if !p.haveTwo || !p.s1.at.After(p.s0.at) {
		return clamp01(p.s1.progress)
	}
	span := p.s1.at.Sub(p.s0.at).Seconds()
	elapsed := now.Sub(p.s0.at).Seconds()
	t := p.s0.progress + float32(elapsed/span)*(p.s1.progress-p.s0.progress)
	return clamp01(t)
}

// Complete finalizes the interpolation context after a transition finishes
// naturally. The pacer stays active until the idle timeout elapses.
func (p *FramePacer) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.idleAt = p.now().Add(p.idleTimeout)
}

// Cancel synchronously stops the interpolation context. No further samples
// are accepted until the next Begin.
func (p *FramePacer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.idleAt = p.now().Add(p.idleTimeout)
}

// Phase returns the current phase, demoting active to idle once the idle
// timeout has elapsed with no running transition.
func (p *FramePacer) Phase() PacerPhase {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase == PacerActive && !p.running && p.now().After(p.idleAt) {
		p.phase = PacerIdle
	}
	return p.phase
}

// Interval returns how long the render loop should wait before the next
// paint: the target frame interval while active, a slow keepalive cadence
// while idle.
func (p *FramePacer) Interval() time.Duration {
	if p.Phase() == PacerIdle {
		return idleInterval
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Second / time.Duration(p.targetFPS)
}

// Running reports whether a transition's interpolation context is live.
func (p *FramePacer) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func clamp01(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
