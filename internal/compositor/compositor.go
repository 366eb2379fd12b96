package compositor

import (
	"image"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v3.3-core/gl"
)

// maxDesyncDelay bounds the one-time random start delay applied per display
// so simultaneous texture uploads across monitors are staggered.
const maxDesyncDelay = 500 * time.Millisecond

// Options configures one per-display Compositor.
type Options struct {
	// RefreshRate of the display, for the frame pacing ladder.
	RefreshRate int

	// ForceSoftware disables the shader path regardless of GL capability.
	ForceSoftware bool

	// Programs may be a cache shared read-only across displays; nil means
	// the compositor owns a private one.
	Programs *ProgramCache

	// RequestRepaint asks the host to schedule a paint. May be nil.
	RequestRepaint func()

	// OnGLDisabled is invoked once if shader rendering is disabled for the
	// rest of the session. May be nil.
	OnGLDisabled func()

	// Desync disables the random start delay when false... it is on by
	// default for multi-display setups.
	NoDesync bool
}

// TransitionOptions are the per-transition arguments common to every Start
// call.
type TransitionOptions struct {
	Duration    time.Duration
	Easing      EasingMode
	OnFinished  func()
	OnCancelled func()
}

// Compositor is the per-display orchestrator: it owns the GPU resource
// managers, the active transition state and the frame pacer, and renders
// either the idle base image or the active transition each paint.
//
// All methods must be called on the thread that owns the GL context.
type Compositor struct {
	ctx      *Context
	textures *TextureManager
	geometry *GeometryManager
	programs *ProgramCache
	pacer    *FramePacer
	soft     *softwareCompositor

	width      int
	height     int
	pixelRatio float64

	base  *image.RGBA
	state State

	easing      EasingMode
	duration    time.Duration
	paced       time.Duration
	desyncDelay time.Duration

	onFinished  func()
	onCancelled func()

	// pendingPromote / pendingRelease defer GPU texture work from Update
	// (any thread the driver runs on) to the next Paint on the GL thread.
	pendingPromote bool
	pendingRelease bool

	shadersDisabled bool
	forceSoftware   bool
	glDisabledSent  bool

	requestRepaint func()
	onGLDisabled   func()

	softFrame *image.RGBA
}

func New(opts Options) *Compositor {
	programs := opts.Programs
	if programs == nil {
		programs = NewProgramCache()
	}
	c := &Compositor{
		ctx:            NewContext(),
		textures:       NewTextureManager(),
		geometry:       NewGeometryManager(),
		programs:       programs,
		pacer:          NewFramePacer(opts.RefreshRate),
		soft:           newSoftwareCompositor(),
		forceSoftware:  opts.ForceSoftware,
		requestRepaint: opts.RequestRepaint,
		onGLDisabled:   opts.OnGLDisabled,
		pixelRatio:     1,
	}
	if !opts.NoDesync {
		c.desyncDelay = time.Duration(rand.Int64N(int64(maxDesyncDelay)))
	}
	return c
}

// InitializeGL runs the context lifecycle init on the render thread with the
// GL context current. On failure the compositor stays usable; every paint
// is simply a no-op.
func (c *Compositor) InitializeGL() error {
	if err := c.ctx.BeginInit(); err != nil {
		return err
	}
	vendor := gl.GoStr(gl.GetString(gl.VENDOR))
	renderer := gl.GoStr(gl.GetString(gl.RENDERER))
	version := gl.GoStr(gl.GetString(gl.VERSION))
	if !c.geometry.Initialize() {
		log.Error("geometry allocation failed, GL context unusable")
		return c.ctx.FailInit()
	}
	return c.ctx.CompleteInit(vendor, renderer, version)
}

// Resize records the current viewport size and device pixel ratio.
func (c *Compositor) Resize(width, height int, pixelRatio float64) {
	if width <= 0 || height <= 0 {
		log.Warnf("ignoring resize to %dx%d", width, height)
		return
	}
	c.width = width
	c.height = height
	c.pixelRatio = pixelRatio
	c.soft.Invalidate()
	c.softFrame = nil
}

// SetBaseImage sets the idle-state image. Its texture is uploaded
// opportunistically on the next idle paint so the cost is not paid at
// transition start.
func (c *Compositor) SetBaseImage(img *image.RGBA) {
	c.base = img
	c.repaint()
}

// BaseImage returns the current idle-state image.
func (c *Compositor) BaseImage() *image.RGBA { return c.base }

// Active reports whether a transition is in flight.
func (c *Compositor) Active() bool { return c.state.Kind != KindNone }

// ActiveKind returns the in-flight transition kind, KindNone when idle.
func (c *Compositor) ActiveKind() Kind { return c.state.Kind }

// Pacer exposes the frame pacer so the host render loop can derive its
// cadence.
func (c *Compositor) Pacer() *FramePacer { return c.pacer }

// GLDisabled reports whether shader rendering is off for this session.
func (c *Compositor) GLDisabled() bool { return c.shadersDisabled }

// PacedDuration is the transition duration the external animation driver
// should run: the requested duration extended by this display's desync
// delay so staggered displays still finish together.
func (c *Compositor) PacedDuration() time.Duration { return c.paced }

// DesyncDelay returns this display's one-time random start delay.
func (c *Compositor) DesyncDelay() time.Duration { return c.desyncDelay }

func (c *Compositor) StartCrossfade(old, new *image.RGBA, opts TransitionOptions) {
	c.start(State{Kind: KindCrossfade, Old: old, New: new}, opts)
}

func (c *Compositor) StartSlide(old, new *image.RGBA, dir Direction, opts TransitionOptions) {
	c.start(State{Kind: KindSlide, Old: old, New: new, Direction: dir}, opts)
}

func (c *Compositor) StartWipe(old, new *image.RGBA, dir Direction, opts TransitionOptions) {
	c.start(State{Kind: KindWipe, Old: old, New: new, Direction: dir}, opts)
}

func (c *Compositor) StartBlockFlip(old, new *image.RGBA, cols, rows int, opts TransitionOptions) {
	c.start(State{Kind: KindBlockFlip, Old: old, New: new, Cols: cols, Rows: rows}, opts)
}

func (c *Compositor) StartBlockSpin(old, new *image.RGBA, dir Direction, opts TransitionOptions) {
	c.start(State{Kind: KindBlockSpin, Old: old, New: new, Direction: dir}, opts)
}

func (c *Compositor) StartBlinds(old, new *image.RGBA, cols, rows int, opts TransitionOptions) {
	c.start(State{Kind: KindBlinds, Old: old, New: new, Cols: cols, Rows: rows}, opts)
}

func (c *Compositor) StartDiffuse(old, new *image.RGBA, cols, rows int, shape ShapeMode, opts TransitionOptions) {
	c.start(State{Kind: KindDiffuse, Old: old, New: new, Cols: cols, Rows: rows, Shape: shape}, opts)
}

func (c *Compositor) StartPeel(old, new *image.RGBA, dir Direction, strips int, opts TransitionOptions) {
	c.start(State{Kind: KindPeel, Old: old, New: new, Direction: dir, Strips: strips}, opts)
}

func (c *Compositor) StartWarp(old, new *image.RGBA, swirlStrength float32, opts TransitionOptions) {
	c.start(State{Kind: KindWarp, Old: old, New: new, SwirlStrength: swirlStrength}, opts)
}

func (c *Compositor) StartRaindrops(old, new *image.RGBA, ripples int, seed float32, opts TransitionOptions) {
	c.start(State{Kind: KindRaindrops, Old: old, New: new, Ripples: ripples, Seed: seed}, opts)
}

func (c *Compositor) StartCrumble(old, new *image.RGBA, cols, rows int, seed float32, opts TransitionOptions) {
	c.start(State{Kind: KindCrumble, Old: old, New: new, Cols: cols, Rows: rows, Seed: seed}, opts)
}

// ParticleParams are the particle transition tunables.
type ParticleParams struct {
	Mode   ParticleMode
	Dir    Direction
	Radius float32
	Turns  float32
	Trail  float32
	Shaded bool
	Seed   float32
}

func (c *Compositor) StartParticle(old, new *image.RGBA, params ParticleParams, opts TransitionOptions) {
	c.start(State{
		Kind:      KindParticle,
		Old:       old,
		New:       new,
		Direction: params.Dir,
		PMode:     params.Mode,
		PRadius:   params.Radius,
		PTurns:    params.Turns,
		PTrail:    params.Trail,
		PShaded:   params.Shaded,
		Seed:      params.Seed,
	}, opts)
}

// StartByKind starts a transition of the given kind with its default
// parameters. Used by the random/triggered effect picker.
func (c *Compositor) StartByKind(kind Kind, old, new *image.RGBA, opts TransitionOptions) {
	seed := rand.Float32() * 100
	switch kind {
	case KindCrossfade:
		c.StartCrossfade(old, new, opts)
	case KindSlide:
		c.StartSlide(old, new, randomDirection(), opts)
	case KindWipe:
		c.StartWipe(old, new, randomDirection(), opts)
	case KindBlockFlip:
		c.StartBlockFlip(old, new, 12, 8, opts)
	case KindBlockSpin:
		c.StartBlockSpin(old, new, randomDirection(), opts)
	case KindBlinds:
		c.StartBlinds(old, new, 10, 1, opts)
	case KindDiffuse:
		c.StartDiffuse(old, new, 16, 10, ShapeMode(rand.IntN(5)), opts)
	case KindPeel:
		c.StartPeel(old, new, randomDirection(), 8, opts)
	case KindWarp:
		c.StartWarp(old, new, 1.5, opts)
	case KindRaindrops:
		c.StartRaindrops(old, new, 1+rand.IntN(8), seed, opts)
	case KindCrumble:
		c.StartCrumble(old, new, 14, 9, seed, opts)
	case KindParticle:
		c.StartParticle(old, new, ParticleParams{
			Mode:   ParticleMode(rand.IntN(3)),
			Dir:    randomDirection(),
			Radius: 24,
			Turns:  2,
			Seed:   seed,
		}, opts)
	default:
		log.Errorf("unknown transition kind %v", kind)
	}
}

func randomDirection() Direction {
	return Direction(rand.IntN(8))
}

// start is the common entry for every transition. Invalid requests are
// logged and dropped without leaving partial state; a valid request always
// clears any prior transition first, so at most one is ever active.
func (c *Compositor) start(st State, opts TransitionOptions) {
	if !validImage(st.New) {
		log.Warnf("%s: destination image missing, transition dropped", st.Kind)
		return
	}
	if err := st.Validate(); err != nil {
		log.Warnf("invalid transition request: %v", err)
		return
	}
	// Nothing to transition from: show the destination immediately.
	if !validImage(st.Old) {
		c.clearTransition()
		c.SetBaseImage(st.New)
		if opts.OnFinished != nil {
			opts.OnFinished()
		}
		return
	}

	c.clearTransition()

	if opts.Duration <= 0 {
		opts.Duration = time.Second
	}
	if opts.Easing == "" {
		opts.Easing = EasingLinear
	}

	c.state = st
	c.easing = opts.Easing
	c.duration = opts.Duration
	c.paced = opts.Duration + c.desyncDelay
	c.onFinished = opts.OnFinished
	c.onCancelled = opts.OnCancelled

	c.pacer.Begin(c.paced)
	c.repaint()
}

// Update advances the active transition. raw is the external driver's
// progress in [0,1] over PacedDuration; the compositor compensates for the
// desync delay and applies easing before the renderers see it.
func (c *Compositor) Update(raw float32) {
	if c.state.Kind == KindNone {
		return
	}
	eff := c.effectiveProgress(raw)
	if eff < c.state.Progress {
		eff = c.state.Progress
	}
	c.state.Progress = eff
	c.pacer.Push(eff)

	if eff >= 1 {
		c.completeTransition()
	}
	c.repaint()
}

// effectiveProgress shifts raw progress over the padded duration past the
// desync delay and eases the result.
func (c *Compositor) effectiveProgress(raw float32) float32 {
	if c.paced <= 0 {
		return 1
	}
	elapsed := float64(raw) * c.paced.Seconds()
	t := (elapsed - c.desyncDelay.Seconds()) / c.duration.Seconds()
	return ApplyEasing(c.easing, clamp01(float32(t)))
}

// completeTransition promotes the destination image to the base, fires
// OnFinished exactly once, and clears the transition. GPU-side texture
// promotion is deferred to the next Paint.
func (c *Compositor) completeTransition() {
	finished := c.onFinished
	c.base = c.state.New
	c.pendingPromote = true
	c.resetTransitionState()
	c.pacer.Complete()
	if finished != nil {
		finished()
	}
}

// CancelCurrentTransition synchronously stops the active transition. With
// snapToNew the base image becomes the cancelled transition's destination
// (no visual rewind); otherwise whatever was last rendered stays. The
// OnFinished callback is never invoked for a cancelled transition.
func (c *Compositor) CancelCurrentTransition(snapToNew bool) {
	if c.state.Kind == KindNone {
		return
	}
	cancelled := c.onCancelled
	if snapToNew {
		c.base = c.state.New
		c.pendingPromote = true
	} else {
		c.pendingRelease = true
	}
	c.resetTransitionState()
	c.pacer.Cancel()
	if cancelled != nil {
		cancelled()
	}
	c.repaint()
}

// clearTransition drops any prior active transition without firing its
// callbacks; used when a new Start supersedes it.
func (c *Compositor) clearTransition() {
	if c.state.Kind == KindNone {
		return
	}
	c.pendingRelease = true
	c.resetTransitionState()
	c.pacer.Cancel()
}

func (c *Compositor) resetTransitionState() {
	c.state = State{}
	c.onFinished = nil
	c.onCancelled = nil
	c.soft.Invalidate()
}

// Paint renders one frame. No-op unless the GL context is ready. The shader
// path is tried first; any failure falls back to CPU compositing, and a
// runtime GL failure disables shaders for the rest of the session.
func (c *Compositor) Paint() {
	if !c.ctx.CanRender() {
		return
	}
	if c.pendingPromote {
		c.textures.PromoteNewToBase()
		c.pendingPromote = false
	}
	if c.pendingRelease {
		c.textures.ReleaseTransition()
		c.pendingRelease = false
	}
	c.syncProgress()

	gl.Viewport(0, 0, int32(c.width), int32(c.height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if c.state.Kind == KindNone {
		c.paintIdle()
		return
	}
	if c.shaderPathUsable() && c.paintShader() {
		return
	}
	c.paintSoftware()
}

// syncProgress advances the rendered progress to the pacer's wall-clock
// interpolation, so a paint landing between coarse or jittery Update ticks
// does not repeat a stale frame. Completion still belongs to Update; a paint
// reaching 1 here just renders the destination.
func (c *Compositor) syncProgress() {
	if c.state.Kind == KindNone {
		return
	}
	if p := c.pacer.ProgressNow(); p > c.state.Progress {
		c.state.Progress = p
	}
}

func (c *Compositor) shaderPathUsable() bool {
	if c.forceSoftware || c.shadersDisabled {
		return false
	}
	if !c.ctx.ShadersUsable() || !c.geometry.Ready() {
		return false
	}
	entry, ok := effects[c.state.Kind]
	if !ok {
		return false
	}
	if entry.precheck != nil && !entry.precheck(&c.state) {
		return false
	}
	return true
}

// paintShader attempts the GPU path for the active transition. Returns
// false if the CPU fallback should draw this frame instead.
func (c *Compositor) paintShader() bool {
	entry := effects[c.state.Kind]
	prog := c.programs.Get(entry.programKey)
	if prog == nil {
		return false
	}
	if !c.textures.PrepareTransition(c.state.Old, c.state.New) {
		// Upload failure escalates to session-wide GL disable rather than
		// retrying the allocation every frame.
		c.disableShaders("texture preparation failed")
		return false
	}
	oldTex, newTex := c.textures.Transition()

	for gl.GetError() != gl.NO_ERROR {
	}
	// At the endpoints every effect must be pixel-identical to one of the
	// two images; draw that image directly instead of trusting each shader's
	// degenerate case.
	switch {
	case c.state.Progress <= 0:
		if !c.drawTexture(oldTex) {
			return false
		}
	case c.state.Progress >= 1:
		if !c.drawTexture(newTex) {
			return false
		}
	default:
		entry.render(&renderEnv{
			prog:   prog,
			geo:    c.geometry,
			oldTex: oldTex,
			newTex: newTex,
			width:  c.width,
			height: c.height,
			state:  &c.state,
		})
	}
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		c.disableShaders("runtime GL error during draw")
		return false
	}
	return true
}

// paintSoftware composites the current state on the CPU and blits the
// result. It never fails; at worst the frame stays black.
func (c *Compositor) paintSoftware() {
	if c.width <= 0 || c.height <= 0 {
		return
	}
	if c.softFrame == nil || c.softFrame.Bounds().Dx() != c.width || c.softFrame.Bounds().Dy() != c.height {
		c.softFrame = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	}
	st := c.state
	if st.Kind == KindNone {
		st = State{Kind: KindCrossfade, Old: c.base, New: c.base, Progress: 0}
	}
	c.soft.Composite(c.softFrame, &st)
	c.blitFrame(c.softFrame)
}

// paintIdle draws the long-lived base texture, uploading it on first use so
// idle time pays the upload cost instead of the next transition start.
func (c *Compositor) paintIdle() {
	tex, ok := c.textures.GetOrCreateBase(c.base)
	if !ok {
		// Base missing or upload failed: CPU path, or black when there is
		// genuinely nothing to show.
		if validImage(c.base) {
			c.paintSoftware()
		}
		return
	}
	c.drawTexture(tex)
}

// blitFrame uploads a CPU-composited frame and draws it fullscreen.
func (c *Compositor) blitFrame(frame *image.RGBA) {
	tex, ok := c.textures.UploadScratch(frame)
	if !ok {
		return
	}
	c.drawTexture(tex)
}

func (c *Compositor) drawTexture(tex texture) bool {
	prog := c.programs.Get("static")
	if prog == nil || !c.geometry.Ready() {
		return false
	}
	gl.UseProgram(prog.Handle)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.Uniform1i(prog.Loc("uTexOld"), 0)
	c.geometry.DrawQuad()
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
	return true
}

// disableShaders turns the shader path off for the rest of the session and
// notifies the host once.
func (c *Compositor) disableShaders(reason string) {
	if c.shadersDisabled {
		return
	}
	log.Errorf("disabling shader rendering for this session: %s", reason)
	c.shadersDisabled = true
	if c.onGLDisabled != nil && !c.glDisabledSent {
		c.glDisabledSent = true
		c.onGLDisabled()
	}
}

func (c *Compositor) repaint() {
	if c.requestRepaint != nil {
		c.requestRepaint()
	}
}

// Cleanup tears down every GPU resource and drives the context lifecycle to
// its terminal state. Must be called on the render thread, once, before the
// host destroys the context; calling it again is a no-op.
func (c *Compositor) Cleanup() {
	switch c.ctx.State() {
	case ContextDestroying, ContextDestroyed:
		return
	case ContextReady, ContextError:
		if err := c.ctx.BeginTeardown(); err != nil {
			log.Debugf("teardown: %v", err)
		}
	default:
		// Never initialized; nothing GPU-side to free.
		c.resetTransitionState()
		return
	}
	c.clearTransition()
	c.textures.Cleanup()
	c.geometry.Cleanup()
	c.programs.Cleanup()
	if err := c.ctx.FinishTeardown(); err != nil {
		log.Debugf("teardown: %v", err)
	}
}
