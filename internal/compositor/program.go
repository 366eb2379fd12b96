package compositor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v3.3-core/gl"
)

// Program is one compiled effect program with its uniform locations resolved
// up front so the render path never queries the driver.
type Program struct {
	Handle   uint32
	Uniforms map[string]int32
}

// Loc returns the cached location for a uniform name, or -1 if the linker
// optimized it out. Setting a uniform at -1 is a GL no-op, which is what we
// want for effects that share shader source.
func (p *Program) Loc(name string) int32 {
	if loc, ok := p.Uniforms[name]; ok {
		return loc
	}
	return -1
}

// ProgramCache lazily compiles effect shader programs and memoizes both
// successes and failures. A program that fails to compile is never retried
// for the lifetime of the process: a degraded driver must not pay compile
// cost (or spam the log) every frame.
type ProgramCache struct {
	programs map[string]*Program
	failed   map[string]bool

	// compile and lookupUniforms default to the GL implementations below;
	// tests swap them to exercise the cache without a context.
	compile        func(vertexSrc, fragmentSrc string) (uint32, error)
	lookupUniforms func(handle uint32, names []string) map[string]int32
	deleteProgram  func(handle uint32)
}

func NewProgramCache() *ProgramCache {
	return &ProgramCache{
		programs:       make(map[string]*Program),
		failed:         make(map[string]bool),
		compile:        compileProgram,
		lookupUniforms: lookupUniforms,
		deleteProgram:  gl.DeleteProgram,
	}
}

// Get returns the compiled program for the effect key, compiling it on first
// use. Returns nil if compilation has failed for this key before; the
// failure is not retried.
func (c *ProgramCache) Get(key string) *Program {
	if p, ok := c.programs[key]; ok {
		return p
	}
	if c.failed[key] {
		return nil
	}
	src, ok := shaderSources[key]
	if !ok {
		log.Errorf("no shader source registered for effect %q", key)
		c.failed[key] = true
		return nil
	}
	handle, err := c.compile(src.vertex, src.fragment)
	if err != nil {
		log.Errorf("shader compile failed for %q, effect disabled: %v", key, err)
		c.failed[key] = true
		return nil
	}
	p := &Program{
		Handle:   handle,
		Uniforms: c.lookupUniforms(handle, src.uniforms),
	}
	c.programs[key] = p
	return p
}

// CompileAttempts reports how many keys have been through a compile, pass or
// fail. Used by tests and the status endpoint.
func (c *ProgramCache) CompileAttempts() int {
	return len(c.programs) + len(c.failed)
}

// Failed reports whether the key is memoized as permanently failed.
func (c *ProgramCache) Failed(key string) bool { return c.failed[key] }

// Cleanup deletes all compiled programs and clears every cache, including
// the failed set. Safe to call repeatedly and with no live context.
func (c *ProgramCache) Cleanup() {
	for key, p := range c.programs {
		if p.Handle != 0 {
			c.deleteProgram(p.Handle)
		}
		delete(c.programs, key)
	}
	c.failed = make(map[string]bool)
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrcs, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrcs, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compile error: %s", strings.TrimRight(infoLog, "\x00"))
	}
	return shader, nil
}

func compileProgram(vsrc, fsrc string) (uint32, error) {
	vs, err := compileShader(vsrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader(fsrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(infoLog))
		gl.DeleteProgram(prog)
		gl.DeleteShader(vs)
		gl.DeleteShader(fs)
		return 0, fmt.Errorf("program link error: %s", strings.TrimRight(infoLog, "\x00"))
	}

	gl.DeleteShader(vs)
	gl.DeleteShader(fs)
	return prog, nil
}

func lookupUniforms(handle uint32, names []string) map[string]int32 {
	locs := make(map[string]int32, len(names))
	for _, name := range names {
		locs[name] = gl.GetUniformLocation(handle, gl.Str(name+"\x00"))
	}
	return locs
}
