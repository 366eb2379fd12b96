package compositor

import (
	"math"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// renderEnv is everything a transition renderer needs for one draw. The
// renderers are pure with respect to the state: the same env renders the
// same frame, and they allocate nothing — all GPU resources come from the
// managers.
type renderEnv struct {
	prog   *Program
	geo    *GeometryManager
	oldTex texture
	newTex texture
	width  int
	height int
	state  *State
}

type effectEntry struct {
	programKey string
	// precheck gates the shader path on per-effect structural preconditions.
	precheck func(*State) bool
	render   func(*renderEnv)
}

// effects is the closed dispatch table over transition kinds.
var effects = map[Kind]effectEntry{
	KindCrossfade: {"crossfade", nil, renderCrossfade},
	KindSlide:     {"slide", nil, renderSlide},
	KindWipe:      {"wipe", nil, renderWipe},
	KindBlockFlip: {"blockflip", gridOK, renderGridEffect("blockflip")},
	KindBlinds:    {"blinds", gridOK, renderGridEffect("blinds")},
	KindDiffuse:   {"diffuse", gridOK, renderDiffuse},
	KindBlockSpin: {"blockspin", nil, renderBlockSpin},
	KindWarp:      {"warp", nil, renderWarp},
	KindRaindrops: {"raindrops", ripplesOK, renderRaindrops},
	KindPeel:      {"peel", stripsOK, renderPeel},
	KindCrumble:   {"crumble", gridOK, renderCrumble},
	KindParticle:  {"particle", radiusOK, renderParticle},
}

func gridOK(s *State) bool    { return s.Cols > 0 && s.Rows > 0 }
func stripsOK(s *State) bool  { return s.Strips > 0 }
func ripplesOK(s *State) bool { return s.Ripples >= 1 && s.Ripples <= 8 }
func radiusOK(s *State) bool  { return s.PRadius > 0 }

// bindCommon binds the program, the two textures to units 0/1 and the
// uniforms every quad effect shares.
func bindCommon(e *renderEnv) {
	gl.UseProgram(e.prog.Handle)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, e.oldTex.id)
	gl.Uniform1i(e.prog.Loc("uTexOld"), 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, e.newTex.id)
	gl.Uniform1i(e.prog.Loc("uTexNew"), 1)
	gl.Uniform1f(e.prog.Loc("uProgress"), e.state.Progress)
	gl.Uniform2f(e.prog.Loc("uResolution"), float32(e.width), float32(e.height))
}

// unbindCommon resets texture units and the program so GL state does not
// leak between paints.
func unbindCommon() {
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

func renderCrossfade(e *renderEnv) {
	bindCommon(e)
	e.geo.DrawQuad()
	unbindCommon()
}

func renderSlide(e *renderEnv) {
	bindCommon(e)
	dx, dy := e.state.Direction.Vector()
	// UV space runs top-down while screen space runs bottom-up.
	gl.Uniform2f(e.prog.Loc("uDirection"), dx, -dy)
	e.geo.DrawQuad()
	unbindCommon()
}

// wipeAxis maps the 8-way direction onto the shader's 6 axis functions.
func wipeAxis(d Direction) int32 {
	switch d {
	case DirRight:
		return 0
	case DirLeft:
		return 1
	case DirDown:
		return 2
	case DirUp:
		return 3
	case DirDownRight, DirUpLeft:
		return 4
	default:
		return 5
	}
}

func renderWipe(e *renderEnv) {
	bindCommon(e)
	gl.Uniform1i(e.prog.Loc("uAxis"), wipeAxis(e.state.Direction))
	e.geo.DrawQuad()
	unbindCommon()
}

func renderGridEffect(key string) func(*renderEnv) {
	return func(e *renderEnv) {
		bindCommon(e)
		gl.Uniform2f(e.prog.Loc("uGrid"), float32(e.state.Cols), float32(e.state.Rows))
		e.geo.DrawQuad()
		unbindCommon()
	}
}

func renderDiffuse(e *renderEnv) {
	bindCommon(e)
	gl.Uniform2f(e.prog.Loc("uGrid"), float32(e.state.Cols), float32(e.state.Rows))
	gl.Uniform1i(e.prog.Loc("uShape"), int32(e.state.Shape))
	e.geo.DrawQuad()
	unbindCommon()
}

// easedSpin biases the rotation so the card accelerates into the flip and
// settles at the end.
func easedSpin(t float32) float32 {
	return t * t * (3 - 2*t)
}

func renderBlockSpin(e *renderEnv) {
	gl.UseProgram(e.prog.Handle)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, e.oldTex.id)
	gl.Uniform1i(e.prog.Loc("uTexOld"), 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, e.newTex.id)
	gl.Uniform1i(e.prog.Loc("uTexNew"), 1)
	gl.Uniform1f(e.prog.Loc("uProgress"), e.state.Progress)

	sign := float32(1)
	switch e.state.Direction {
	case DirLeft, DirUpLeft, DirDownLeft, DirUp:
		sign = -1
	}
	angle := math.Pi * easedSpin(e.state.Progress) * sign

	var model mgl32.Mat4
	if e.state.Direction.Horizontal() {
		model = mgl32.HomogRotate3DY(angle)
	} else {
		model = mgl32.HomogRotate3DX(angle)
	}
	// Simplified orthographic projection: the rotated slab stays
	// viewport-filling at the 0 and pi extremes. Depth range is kept wide
	// enough for the card's thickness at any angle.
	proj := mgl32.Ortho(-1, 1, -1, 1, -4, 4)

	gl.UniformMatrix4fv(e.prog.Loc("uModel"), 1, false, &model[0])
	gl.UniformMatrix4fv(e.prog.Loc("uProj"), 1, false, &proj[0])

	gl.Enable(gl.DEPTH_TEST)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	e.geo.DrawBox()
	gl.Disable(gl.DEPTH_TEST)
	unbindCommon()
}

func renderWarp(e *renderEnv) {
	bindCommon(e)
	gl.Uniform1f(e.prog.Loc("uSwirl"), e.state.SwirlStrength)
	e.geo.DrawQuad()
	unbindCommon()
}

func renderRaindrops(e *renderEnv) {
	bindCommon(e)
	gl.Uniform1i(e.prog.Loc("uRipples"), int32(e.state.Ripples))
	gl.Uniform1f(e.prog.Loc("uSeed"), e.state.Seed)
	e.geo.DrawQuad()
	unbindCommon()
}

func renderPeel(e *renderEnv) {
	bindCommon(e)
	dx, dy := e.state.Direction.Vector()
	gl.Uniform1i(e.prog.Loc("uStrips"), int32(e.state.Strips))
	gl.Uniform2f(e.prog.Loc("uDirection"), dx, dy)
	e.geo.DrawQuad()
	unbindCommon()
}

func renderCrumble(e *renderEnv) {
	bindCommon(e)
	gl.Uniform2f(e.prog.Loc("uGrid"), float32(e.state.Cols), float32(e.state.Rows))
	gl.Uniform1f(e.prog.Loc("uSeed"), e.state.Seed)
	e.geo.DrawQuad()
	unbindCommon()
}

func renderParticle(e *renderEnv) {
	bindCommon(e)
	s := e.state
	dx, dy := s.Direction.Vector()
	gl.Uniform1f(e.prog.Loc("uRadius"), s.PRadius)
	gl.Uniform1i(e.prog.Loc("uMode"), int32(s.PMode))
	gl.Uniform2f(e.prog.Loc("uDirection"), dx, dy)
	gl.Uniform1f(e.prog.Loc("uTurns"), s.PTurns)
	gl.Uniform1f(e.prog.Loc("uTrail"), s.PTrail)
	gl.Uniform1f(e.prog.Loc("uSeed"), s.Seed)
	shaded := int32(0)
	if s.PShaded {
		shaded = 1
	}
	gl.Uniform1i(e.prog.Loc("uShaded"), shaded)
	e.geo.DrawQuad()
	unbindCommon()
}
