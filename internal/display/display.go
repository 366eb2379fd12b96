// Package display owns the GLFW layer: monitor enumeration and one
// borderless fullscreen window per monitor, each with its own GL context.
// All calls must happen on the locked main thread.
package display

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Output is one monitor with its fullscreen window and context.
type Output struct {
	Window  *glfw.Window
	Monitor *glfw.Monitor

	Name    string
	Width   int
	Height  int
	Refresh int

	glLoaded bool
}

// Init initializes GLFW and sets the window hints shared by every output.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Decorated, glfw.False)
	glfw.WindowHint(glfw.AutoIconify, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	return nil
}

// Terminate tears GLFW down. Call after every Output is closed.
func Terminate() {
	glfw.Terminate()
}

// OpenAll creates a fullscreen window on every connected monitor. The first
// window's context is shared with the rest so compiled shader programs can be
// reused across outputs. onInput is invoked for any key or mouse activity on
// any window.
func OpenAll(title string, onInput func()) ([]*Output, error) {
	monitors := glfw.GetMonitors()
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	outputs := make([]*Output, 0, len(monitors))
	var share *glfw.Window
	for _, mon := range monitors {
		mode := mon.GetVideoMode()
		win, err := glfw.CreateWindow(mode.Width, mode.Height, title, mon, share)
		if err != nil {
			for _, o := range outputs {
				o.Close()
			}
			return nil, fmt.Errorf("create window on %q: %w", mon.GetName(), err)
		}
		if share == nil {
			share = win
		}
		win.SetInputMode(glfw.CursorMode, glfw.CursorHidden)

		out := &Output{
			Window:  win,
			Monitor: mon,
			Name:    mon.GetName(),
			Width:   mode.Width,
			Height:  mode.Height,
			Refresh: mode.RefreshRate,
		}
		installInputCallbacks(win, onInput)
		outputs = append(outputs, out)

		log.Infof("output %s: %dx%d @ %dHz", out.Name, out.Width, out.Height, out.Refresh)
	}
	return outputs, nil
}

func installInputCallbacks(win *glfw.Window, onInput func()) {
	if onInput == nil {
		return
	}
	win.SetKeyCallback(func(*glfw.Window, glfw.Key, int, glfw.Action, glfw.ModifierKey) {
		onInput()
	})
	win.SetMouseButtonCallback(func(*glfw.Window, glfw.MouseButton, glfw.Action, glfw.ModifierKey) {
		onInput()
	})
	// Screensavers also wake on pointer motion; ignore the first event since
	// it reports the initial cursor position.
	first := true
	win.SetCursorPosCallback(func(*glfw.Window, float64, float64) {
		if first {
			first = false
			return
		}
		onInput()
	})
}

// MakeCurrent binds the output's GL context to the calling thread and loads
// the GL function pointers the first time.
func (o *Output) MakeCurrent() error {
	o.Window.MakeContextCurrent()
	if !o.glLoaded {
		if err := gl.Init(); err != nil {
			return fmt.Errorf("load GL for %s: %w", o.Name, err)
		}
		// Tie buffer swaps to vblank; the frame pacer controls cadence above
		// this.
		glfw.SwapInterval(1)
		o.glLoaded = true
	}
	return nil
}

// FramebufferSize returns the drawable size in pixels, which differs from the
// window size on scaled displays.
func (o *Output) FramebufferSize() (int, int) {
	return o.Window.GetFramebufferSize()
}

// PixelRatio is the framebuffer-to-window scale factor.
func (o *Output) PixelRatio() float64 {
	fw, _ := o.Window.GetFramebufferSize()
	w, _ := o.Window.GetSize()
	if w == 0 {
		return 1
	}
	return float64(fw) / float64(w)
}

// Swap presents the rendered frame.
func (o *Output) Swap() {
	o.Window.SwapBuffers()
}

// ShouldClose reports whether the window was asked to close.
func (o *Output) ShouldClose() bool {
	return o.Window.ShouldClose()
}

// Close destroys the window. The output is unusable afterwards.
func (o *Output) Close() {
	if o.Window != nil {
		o.Window.Destroy()
		o.Window = nil
	}
}
