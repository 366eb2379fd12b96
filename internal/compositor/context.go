package compositor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// ContextState tracks the lifecycle of the GL context backing one display
// surface. No draw call may be issued unless the state is ContextReady.
type ContextState int

const (
	ContextUninitialized ContextState = iota
	ContextInitializing
	ContextReady
	ContextError
	ContextDestroying
	ContextDestroyed
)

func (s ContextState) String() string {
	switch s {
	case ContextUninitialized:
		return "uninitialized"
	case ContextInitializing:
		return "initializing"
	case ContextReady:
		return "ready"
	case ContextError:
		return "error"
	case ContextDestroying:
		return "destroying"
	case ContextDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Known software rasterizer signatures. A context whose vendor/renderer
// strings match one of these still reports ready, but shader rendering is
// demoted for the whole session: llvmpipe on a remote desktop renders the
// swirl shaders at seconds per frame.
var softwareRasterizers = []string{
	"llvmpipe",
	"softpipe",
	"swrast",
	"software rasterizer",
	"gdi generic",
	"mesa offscreen",
	"vmware",
	"virtualbox",
}

// Context is the per-surface lifecycle state machine. It owns no GL objects
// itself; the managers consult it before touching the GPU.
type Context struct {
	state    ContextState
	vendor   string
	renderer string
	version  string
	software bool
}

func NewContext() *Context {
	return &Context{state: ContextUninitialized}
}

func (c *Context) State() ContextState { return c.state }

// BeginInit moves uninitialized -> initializing.
func (c *Context) BeginInit() error {
	if c.state != ContextUninitialized {
		return fmt.Errorf("cannot init GL context in state %s", c.state)
	}
	c.state = ContextInitializing
	return nil
}

// CompleteInit records the driver identity strings and moves
// initializing -> ready. Software rasterizers are detected here and demote
// shader capability without failing the context.
func (c *Context) CompleteInit(vendor, renderer, version string) error {
	if c.state != ContextInitializing {
		return fmt.Errorf("cannot complete GL init in state %s", c.state)
	}
	c.vendor = vendor
	c.renderer = renderer
	c.version = version
	c.software = detectSoftwareRasterizer(vendor, renderer)
	c.state = ContextReady
	if c.software {
		log.Warnf("software rasterizer detected (%s / %s); shader path disabled", vendor, renderer)
	} else {
		log.Debugf("GL context ready: %s / %s / %s", vendor, renderer, version)
	}
	return nil
}

// FailInit moves initializing -> error.
func (c *Context) FailInit() error {
	if c.state != ContextInitializing {
		return fmt.Errorf("cannot fail GL init in state %s", c.state)
	}
	c.state = ContextError
	return nil
}

// MarkLost records a context loss or driver error: ready -> error.
func (c *Context) MarkLost() error {
	if c.state != ContextReady {
		return fmt.Errorf("cannot mark GL context lost in state %s", c.state)
	}
	c.state = ContextError
	return nil
}

// BeginTeardown moves ready or error -> destroying.
func (c *Context) BeginTeardown() error {
	if c.state != ContextReady && c.state != ContextError {
		return fmt.Errorf("cannot tear down GL context in state %s", c.state)
	}
	c.state = ContextDestroying
	return nil
}

// FinishTeardown moves destroying -> destroyed. Destroyed is terminal.
func (c *Context) FinishTeardown() error {
	if c.state != ContextDestroying {
		return fmt.Errorf("cannot finish teardown in state %s", c.state)
	}
	c.state = ContextDestroyed
	return nil
}

// CanRender reports whether draw calls may be issued at all.
func (c *Context) CanRender() bool { return c.state == ContextReady }

// ShadersUsable reports whether the shader path may be used. False on a
// software rasterizer even though the context is ready.
func (c *Context) ShadersUsable() bool { return c.state == ContextReady && !c.software }

// DriverInfo returns the vendor/renderer/version strings recorded at init.
func (c *Context) DriverInfo() (vendor, renderer, version string) {
	return c.vendor, c.renderer, c.version
}

func detectSoftwareRasterizer(vendor, renderer string) bool {
	v := strings.ToLower(vendor)
	r := strings.ToLower(renderer)
	for _, sig := range softwareRasterizers {
		if strings.Contains(v, sig) || strings.Contains(r, sig) {
			return true
		}
	}
	return false
}
