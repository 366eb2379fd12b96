package compositor

import (
	"image"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v3.3-core/gl"
)

// texture is one uploaded GPU texture and its pixel dimensions.
type texture struct {
	id     uint32
	width  int
	height int
}

func (t texture) valid() bool { return t.id != 0 }

// TextureManager owns the GPU textures for one display context: the two
// transition-scoped textures and one long-lived base texture for the idle
// image. Instances are never shared across contexts.
type TextureManager struct {
	baseTex texture
	baseSrc *image.RGBA

	oldTex texture
	newTex texture
	oldSrc *image.RGBA
	newSrc *image.RGBA

	// scratch is the software fallback's upload slot, replaced every frame
	// it is used.
	scratch texture

	// upload and del default to the GL implementations; tests swap them.
	upload func(img *image.RGBA) (texture, bool)
	del    func(t *texture)
}

func NewTextureManager() *TextureManager {
	return &TextureManager{
		upload: uploadTexture,
		del:    deleteTexture,
	}
}

// GetOrCreateBase returns the cached base texture for img, uploading it if
// the base image changed. Identity is the image pointer: the orchestrator
// hands the same *image.RGBA back every frame between transitions.
func (m *TextureManager) GetOrCreateBase(img *image.RGBA) (texture, bool) {
	if !validImage(img) {
		return texture{}, false
	}
	if m.baseSrc == img && m.baseTex.valid() {
		return m.baseTex, true
	}
	tex, ok := m.upload(img)
	if !ok {
		return texture{}, false
	}
	m.del(&m.baseTex)
	m.baseTex = tex
	m.baseSrc = img
	return tex, true
}

// PrepareTransition ensures both transition images are uploaded. Returns
// false, never an error or panic, on invalid input or GPU allocation
// failure so the caller can fall back to CPU compositing.
func (m *TextureManager) PrepareTransition(old, new *image.RGBA) bool {
	if !validImage(old) || !validImage(new) {
		return false
	}
	if m.oldSrc != old || !m.oldTex.valid() {
		// The base texture may already hold the old image; reuse the upload.
		if m.baseSrc == old && m.baseTex.valid() {
			m.del(&m.oldTex)
			m.oldTex = m.baseTex
			m.baseTex = texture{}
			m.baseSrc = nil
		} else {
			tex, ok := m.upload(old)
			if !ok {
				return false
			}
			m.del(&m.oldTex)
			m.oldTex = tex
		}
		m.oldSrc = old
	}
	if m.newSrc != new || !m.newTex.valid() {
		tex, ok := m.upload(new)
		if !ok {
			m.ReleaseTransition()
			return false
		}
		m.del(&m.newTex)
		m.newTex = tex
		m.newSrc = new
	}
	return true
}

// Transition returns the prepared old/new texture pair.
func (m *TextureManager) Transition() (old, new texture) {
	return m.oldTex, m.newTex
}

// PromoteNewToBase makes the transition's destination texture the long-lived
// base texture, avoiding a re-upload when the transition completes.
func (m *TextureManager) PromoteNewToBase() {
	if !m.newTex.valid() {
		return
	}
	m.del(&m.baseTex)
	m.baseTex = m.newTex
	m.baseSrc = m.newSrc
	m.newTex = texture{}
	m.newSrc = nil
	m.ReleaseTransition()
}

// ReleaseTransition frees the two transition-scoped textures. The base
// texture is kept.
func (m *TextureManager) ReleaseTransition() {
	m.del(&m.oldTex)
	m.del(&m.newTex)
	m.oldSrc = nil
	m.newSrc = nil
}

// UploadScratch uploads one CPU-composited frame for the software fallback
// blit, replacing the previous scratch texture.
func (m *TextureManager) UploadScratch(img *image.RGBA) (texture, bool) {
	if !validImage(img) {
		return texture{}, false
	}
	tex, ok := m.upload(img)
	if !ok {
		return texture{}, false
	}
	m.del(&m.scratch)
	m.scratch = tex
	return tex, true
}

// Cleanup releases every texture. Idempotent, and a no-op when the uploads
// never happened (no live context).
func (m *TextureManager) Cleanup() {
	m.del(&m.baseTex)
	m.del(&m.oldTex)
	m.del(&m.newTex)
	m.del(&m.scratch)
	m.baseSrc = nil
	m.oldSrc = nil
	m.newSrc = nil
}

func uploadTexture(img *image.RGBA) (texture, bool) {
	b := img.Bounds()
	var tex texture
	tex.width = b.Dx()
	tex.height = b.Dy()

	gl.GenTextures(1, &tex.id)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Drain stale errors so the allocation check below is ours.
	for gl.GetError() != gl.NO_ERROR {
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(tex.width), int32(tex.height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		log.Errorf("texture upload failed (%dx%d): GL error 0x%04x", tex.width, tex.height, errCode)
		gl.DeleteTextures(1, &tex.id)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return texture{}, false
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex, true
}

func deleteTexture(tex *texture) {
	if tex.id != 0 {
		gl.DeleteTextures(1, &tex.id)
	}
	*tex = texture{}
}
