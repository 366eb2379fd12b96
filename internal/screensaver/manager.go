// Package screensaver runs the show: it owns the image rotation, one
// compositor per display output, and the main-thread render loop that drives
// transitions at the pacer's cadence.
package screensaver

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spf13/viper"

	"github.com/mvickers/driftscreen/internal/compositor"
	"github.com/mvickers/driftscreen/internal/display"
	"github.com/mvickers/driftscreen/internal/ipc"
)

// head is one output plus its compositor and per-transition clock.
type head struct {
	out    *display.Output
	comp   *compositor.Compositor
	width  int
	height int
	start  time.Time
}

type Manager struct {
	sync.Mutex
	images       []string
	currentImage string

	cmds  chan ipc.Command
	woken atomic.Bool

	// heads and the compositors they hold belong to the render thread; IPC
	// reads go through the snapshot fields below, guarded by the mutex.
	heads    []*head
	programs *compositor.ProgramCache

	statusEffect  string
	statusOutputs []string
}

// NewManager creates a manager rotating through the given image paths.
func NewManager(images []string) *Manager {
	return &Manager{
		images:       images,
		cmds:         make(chan ipc.Command, 4),
		programs:     compositor.NewProgramCache(),
		statusEffect: compositor.KindNone.String(),
	}
}

func (m *Manager) CurrentImage() string {
	m.Lock()
	defer m.Unlock()
	return m.currentImage
}

func (m *Manager) GetImages() []string {
	m.Lock()
	defer m.Unlock()
	return m.images
}

func (m *Manager) SetImages(images []string) {
	m.Lock()
	defer m.Unlock()
	m.images = images
}

// NextImage rotates the list and returns the new head.
func (m *Manager) NextImage() string {
	m.Lock()
	defer m.Unlock()
	if len(m.images) == 0 {
		return ""
	}
	next := m.images[0]
	m.images = append(m.images[1:], next)
	m.currentImage = next
	return next
}

func (m *Manager) Shuffle() {
	m.Lock()
	defer m.Unlock()
	rand.Shuffle(len(m.images), func(i, j int) {
		m.images[i], m.images[j] = m.images[j], m.images[i]
	})
}

// ActiveEffect names the transition currently running, or "none". Served
// from the last published snapshot; safe to call from the IPC goroutine.
func (m *Manager) ActiveEffect() string {
	m.Lock()
	defer m.Unlock()
	return m.statusEffect
}

// Outputs lists the connected display names, from the last published
// snapshot.
func (m *Manager) Outputs() []string {
	m.Lock()
	defer m.Unlock()
	return append([]string(nil), m.statusOutputs...)
}

// publishStatus refreshes the snapshot ActiveEffect and Outputs serve from.
// Called on the render thread, which owns heads and the compositor state.
func (m *Manager) publishStatus() {
	effect := compositor.KindNone
	names := make([]string, 0, len(m.heads))
	for _, h := range m.heads {
		if effect == compositor.KindNone && h.comp.Active() {
			effect = h.comp.ActiveKind()
		}
		names = append(names, h.out.Name)
	}
	m.Lock()
	m.statusEffect = effect.String()
	m.statusOutputs = names
	m.Unlock()
}

func (m *Manager) EnqueueCommand(cmd ipc.Command) {
	select {
	case m.cmds <- cmd:
	default:
		log.Warnf("command queue full, dropping %s", cmd.Type)
	}
}

func (m *Manager) Stop() {
	m.EnqueueCommand(ipc.Command{Type: ipc.CommandStop})
}

// Run blocks on the render loop until stopped by a command or, when
// exit_on_input is set, by user activity. Must be called on the locked main
// thread.
func (m *Manager) Run() error {
	if err := display.Init(); err != nil {
		return err
	}
	defer display.Terminate()

	exitOnInput := viper.GetBool("exit_on_input")
	outputs, err := display.OpenAll("driftscreen", func() {
		if exitOnInput {
			m.woken.Store(true)
		}
	})
	if err != nil {
		return err
	}

	if err := m.attach(outputs); err != nil {
		m.teardown()
		return err
	}

	if viper.GetBool("shuffle") {
		m.Shuffle()
	}
	m.showInitial()

	delay := viper.GetInt("delay")
	if delay <= 0 {
		delay = 300
	}
	changed := time.Now()

	log.Info("Starting screensaver loop...")
	running := true
	for running {
		select {
		case cmd := <-m.cmds:
			switch cmd.Type {
			case ipc.CommandStop:
				log.Info("Stopping screensaver...")
				running = false
				continue
			case ipc.CommandNext:
				m.transition(m.pickKind(viper.GetString("transition")))
				changed = time.Now()
			case ipc.CommandTrigger:
				if len(cmd.Args) == 0 {
					log.Error("No effect specified for trigger command")
					continue
				}
				m.transition(m.pickKind(cmd.Args[0]))
				changed = time.Now()
			case ipc.CommandLoad:
				if len(cmd.Args) == 0 {
					log.Error("No images specified for load command")
					continue
				}
				m.SetImages(cmd.Args)
				log.Infof("Loaded %d images", len(cmd.Args))
				if viper.GetBool("shuffle") {
					m.Shuffle()
				}
				m.transition(m.pickKind(viper.GetString("transition")))
				changed = time.Now()
			default:
				log.Error("Unknown command:", cmd.Type)
			}
		default:
		}

		if m.woken.Load() {
			log.Info("Input detected, exiting")
			running = false
			continue
		}

		if time.Since(changed) > time.Duration(delay)*time.Second {
			m.transition(m.pickKind(viper.GetString("transition")))
			changed = time.Now()
		}

		m.frame()

		closed := 0
		for _, h := range m.heads {
			if h.out.ShouldClose() {
				closed++
			}
		}
		if closed == len(m.heads) {
			running = false
		}

		glfw.WaitEventsTimeout(m.interval().Seconds())
	}

	m.teardown()
	log.Info("Screensaver stopped.")
	return nil
}

// attach builds one compositor per output and initializes its GL context.
// The first context is shared with the rest, so one program cache serves all.
func (m *Manager) attach(outputs []*display.Output) error {
	force := viper.GetBool("force_software")
	idle := time.Duration(viper.GetFloat64("idle_timeout") * float64(time.Second))
	limit := viper.GetInt("framerate_limit")
	for _, out := range outputs {
		if err := out.MakeCurrent(); err != nil {
			return err
		}
		comp := compositor.New(compositor.Options{
			RefreshRate:   out.Refresh,
			ForceSoftware: force,
			Programs:      m.programs,
			NoDesync:      len(outputs) == 1,
			OnGLDisabled: func() {
				log.Warn("shader rendering disabled, continuing on the CPU path")
			},
		})
		if err := comp.InitializeGL(); err != nil {
			log.Errorf("GL init failed on %s: %v", out.Name, err)
		}
		w, h := out.FramebufferSize()
		comp.Resize(w, h, out.PixelRatio())
		if idle > 0 {
			comp.Pacer().SetIdleTimeout(idle)
		}
		comp.Pacer().CapFPS(limit)
		m.heads = append(m.heads, &head{out: out, comp: comp, width: w, height: h})
	}
	m.publishStatus()
	return nil
}

// showInitial puts the first image up without a transition.
func (m *Manager) showInitial() {
	img, path, err := m.loadNext()
	if err != nil {
		log.Errorf("no initial image: %v", err)
		return
	}
	log.Infof("initial image: %s", path)
	mode := ScalingMode(viper.GetString("scale_mode"))
	for _, h := range m.heads {
		h.comp.SetBaseImage(FitImage(img, h.width, h.height, mode))
	}
}

// transition starts the given effect toward the next image on every head.
// Each head runs its own desync-padded clock.
func (m *Manager) transition(kind compositor.Kind) {
	img, path, err := m.loadNext()
	if err != nil {
		log.Errorf("transition skipped: %v", err)
		return
	}
	duration := time.Duration(viper.GetFloat64("transition_duration") * float64(time.Second))
	if duration <= 0 {
		duration = time.Second
	}
	easing := compositor.EasingMode(viper.GetString("easing"))

	log.Infof("transition %s to %s over %v", kind, path, duration)
	mode := ScalingMode(viper.GetString("scale_mode"))
	for _, h := range m.heads {
		h := h
		fitted := FitImage(img, h.width, h.height, mode)
		h.comp.StartByKind(kind, h.comp.BaseImage(), fitted, compositor.TransitionOptions{
			Duration: duration,
			Easing:   easing,
			OnFinished: func() {
				log.Debugf("%s: transition finished", h.out.Name)
			},
		})
		h.start = time.Now()
	}
	m.publishStatus()
}

// frame advances every active transition from its wall clock and paints each
// head with its context current.
func (m *Manager) frame() {
	for _, h := range m.heads {
		if h.comp.Active() {
			paced := h.comp.PacedDuration()
			raw := float32(1)
			if paced > 0 {
				raw = float32(time.Since(h.start).Seconds() / paced.Seconds())
			}
			h.comp.Update(raw)
		}
	}
	for _, h := range m.heads {
		if err := h.out.MakeCurrent(); err != nil {
			log.Errorf("%s: %v", h.out.Name, err)
			continue
		}
		h.comp.Paint()
		h.out.Swap()
	}
	m.publishStatus()
}

// interval is the shortest frame interval any head wants right now.
func (m *Manager) interval() time.Duration {
	min := time.Second
	for _, h := range m.heads {
		if iv := h.comp.Pacer().Interval(); iv < min {
			min = iv
		}
	}
	return min
}

func (m *Manager) teardown() {
	for _, h := range m.heads {
		if err := h.out.MakeCurrent(); err == nil {
			h.comp.Cleanup()
		}
		h.out.Close()
	}
	m.heads = nil
	m.publishStatus()
}

// pickKind resolves a configured effect name; "random" or anything unknown
// draws from the full set.
func (m *Manager) pickKind(name string) compositor.Kind {
	if name != "" && name != "random" {
		if kind := compositor.KindFromName(name); kind != compositor.KindNone {
			return kind
		}
		log.Warnf("unknown transition %q, picking at random", name)
	}
	return compositor.Kind(1 + rand.IntN(int(compositor.KindParticle)))
}

// loadNext decodes the next image in the rotation as RGBA. Returns the image
// and its path.
func (m *Manager) loadNext() (*image.RGBA, string, error) {
	path := m.NextImage()
	if path == "" {
		return nil, "", fmt.Errorf("image list is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", path, err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	return rgba, path, nil
}
