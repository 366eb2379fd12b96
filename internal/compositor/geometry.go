package compositor

import (
	"github.com/go-gl/gl/v3.3-core/gl"
)

// GeometryManager owns the two static meshes every renderer draws with: a
// fullscreen quad and a thin box used by the 3D block-spin effect. Geometry
// is immutable after Initialize; there are no per-frame vertex updates.
// Buffer objects are not shareable across independent contexts, so each
// display surface owns its own instance.
type GeometryManager struct {
	quadVAO uint32
	quadVBO uint32

	boxVAO     uint32
	boxVBO     uint32
	boxEBO     uint32
	boxIndices int32

	ready bool
}

func NewGeometryManager() *GeometryManager {
	return &GeometryManager{}
}

// quadVertices is the fullscreen triangle strip, interleaved x,y,u,v.
// V is flipped because image rows run top-down while GL runs bottom-up.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	1, 1, 1, 0,
}

// Initialize creates the GPU buffers. Returns false on allocation failure.
func (g *GeometryManager) Initialize() bool {
	if g.ready {
		return true
	}
	for gl.GetError() != gl.NO_ERROR {
	}

	gl.GenVertexArrays(1, &g.quadVAO)
	gl.GenBuffers(1, &g.quadVBO)
	gl.BindVertexArray(g.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 4*4, 2*4)

	boxVerts, boxIdx := buildBoxMesh(0.06)
	g.boxIndices = int32(len(boxIdx))
	gl.GenVertexArrays(1, &g.boxVAO)
	gl.GenBuffers(1, &g.boxVBO)
	gl.GenBuffers(1, &g.boxEBO)
	gl.BindVertexArray(g.boxVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.boxVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(boxVerts)*4, gl.Ptr(boxVerts), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.boxEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(boxIdx)*4, gl.Ptr(boxIdx), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 8*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 8*4, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, 8*4, 6*4)

	gl.BindVertexArray(0)

	if gl.GetError() != gl.NO_ERROR {
		g.Cleanup()
		return false
	}
	g.ready = true
	return true
}

// DrawQuad issues the fullscreen quad draw. The caller has already bound a
// program and set its uniforms.
func (g *GeometryManager) DrawQuad() {
	gl.BindVertexArray(g.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// DrawBox issues the box mesh draw used by block-spin.
func (g *GeometryManager) DrawBox() {
	gl.BindVertexArray(g.boxVAO)
	gl.DrawElements(gl.TRIANGLES, g.boxIndices, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Ready reports whether Initialize has succeeded.
func (g *GeometryManager) Ready() bool { return g.ready }

// Cleanup deletes the GPU buffers. Idempotent.
func (g *GeometryManager) Cleanup() {
	if g.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &g.quadVAO)
		gl.DeleteBuffers(1, &g.quadVBO)
		g.quadVAO, g.quadVBO = 0, 0
	}
	if g.boxVAO != 0 {
		gl.DeleteVertexArrays(1, &g.boxVAO)
		gl.DeleteBuffers(1, &g.boxVBO)
		gl.DeleteBuffers(1, &g.boxEBO)
		g.boxVAO, g.boxVBO, g.boxEBO = 0, 0, 0
	}
	g.ready = false
}

// buildBoxMesh returns a unit card spanning [-1,1] in x/y with the given
// half-thickness in z. Vertices are interleaved position(3), normal(3),
// uv(2); 4 vertices per face, 6 faces, indexed as two triangles each. The
// back face UVs are mirrored horizontally so the destination image reads
// correctly after a half rotation.
func buildBoxMesh(halfDepth float32) ([]float32, []uint32) {
	d := halfDepth
	faces := [][]float32{
		// front: old image
		{-1, -1, d, 0, 0, 1, 0, 1, 1, -1, d, 0, 0, 1, 1, 1, 1, 1, d, 0, 0, 1, 1, 0, -1, 1, d, 0, 0, 1, 0, 0},
		// back: new image, mirrored in u
		{1, -1, -d, 0, 0, -1, 0, 1, -1, -1, -d, 0, 0, -1, 1, 1, -1, 1, -d, 0, 0, -1, 1, 0, 1, 1, -d, 0, 0, -1, 0, 0},
		// right edge
		{1, -1, d, 1, 0, 0, 0, 1, 1, -1, -d, 1, 0, 0, 1, 1, 1, 1, -d, 1, 0, 0, 1, 0, 1, 1, d, 1, 0, 0, 0, 0},
		// left edge
		{-1, -1, -d, -1, 0, 0, 0, 1, -1, -1, d, -1, 0, 0, 1, 1, -1, 1, d, -1, 0, 0, 1, 0, -1, 1, -d, -1, 0, 0, 0, 0},
		// top edge
		{-1, 1, d, 0, 1, 0, 0, 1, 1, 1, d, 0, 1, 0, 1, 1, 1, 1, -d, 0, 1, 0, 1, 0, -1, 1, -d, 0, 1, 0, 0, 0},
		// bottom edge
		{-1, -1, -d, 0, -1, 0, 0, 1, 1, -1, -d, 0, -1, 0, 1, 1, 1, -1, d, 0, -1, 0, 1, 0, -1, -1, d, 0, -1, 0, 0, 0},
	}

	var verts []float32
	var idx []uint32
	for f, face := range faces {
		verts = append(verts, face...)
		base := uint32(f * 4)
		idx = append(idx, base, base+1, base+2, base, base+2, base+3)
	}
	return verts, idx
}
