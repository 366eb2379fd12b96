package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// softwareCompositor reproduces each transition family at reduced fidelity
// on the CPU: opacity blending, clipped region reveals, or translated blits.
// It is the fallback when the shader path is unavailable and must never
// fail — it always produces some visible frame.
type softwareCompositor struct {
	// scaled image cache, keyed by source pointer, so a transition does not
	// rescale both images every frame.
	scaledSrc map[*image.RGBA]*image.RGBA
}

func newSoftwareCompositor() *softwareCompositor {
	return &softwareCompositor{scaledSrc: make(map[*image.RGBA]*image.RGBA)}
}

// Composite renders the transition state into dst. Either image may be nil;
// black is used only when both are absent.
func (s *softwareCompositor) Composite(dst *image.RGBA, st *State) {
	old := s.fitted(st.Old, dst.Bounds())
	new := s.fitted(st.New, dst.Bounds())

	switch {
	case old == nil && new == nil:
		fill(dst, color.RGBA{A: 255})
		return
	case old == nil:
		draw.Draw(dst, dst.Bounds(), new, new.Bounds().Min, draw.Src)
		return
	case new == nil:
		draw.Draw(dst, dst.Bounds(), old, old.Bounds().Min, draw.Src)
		return
	}

	p := st.Progress
	if p <= 0 {
		draw.Draw(dst, dst.Bounds(), old, old.Bounds().Min, draw.Src)
		return
	}
	if p >= 1 {
		draw.Draw(dst, dst.Bounds(), new, new.Bounds().Min, draw.Src)
		return
	}

	switch st.Kind {
	case KindWipe:
		s.wipe(dst, old, new, st)
	case KindSlide, KindPeel:
		s.slide(dst, old, new, st)
	case KindBlockFlip, KindBlinds, KindDiffuse, KindCrumble, KindParticle:
		s.regionReveal(dst, old, new, st)
	default:
		// Crossfade, warp, raindrops and block-spin degrade to a plain
		// opacity blend.
		blendLinear(dst, old, new, p)
	}
}

// Invalidate drops the scaled-image cache; called when a transition ends or
// the viewport resizes.
func (s *softwareCompositor) Invalidate() {
	s.scaledSrc = make(map[*image.RGBA]*image.RGBA)
}

// fitted returns img scaled to bounds, cached per source image. The blend
// loops index all three Pix slices with dst-derived offsets, so the result
// is always zero-anchored with a tight stride; subimages (offset origin,
// parent stride) are re-anchored by copy.
func (s *softwareCompositor) fitted(img *image.RGBA, bounds image.Rectangle) *image.RGBA {
	if !validImage(img) {
		return nil
	}
	if img.Bounds().Dx() == bounds.Dx() && img.Bounds().Dy() == bounds.Dy() &&
		img.Bounds().Min == (image.Point{}) && img.Stride == 4*img.Bounds().Dx() {
		return img
	}
	if cached, ok := s.scaledSrc[img]; ok && cached.Bounds() == bounds {
		return cached
	}
	scaled := image.NewRGBA(bounds)
	if img.Bounds().Dx() == bounds.Dx() && img.Bounds().Dy() == bounds.Dy() {
		draw.Draw(scaled, scaled.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(scaled, bounds, img, img.Bounds(), draw.Src, nil)
	}
	s.scaledSrc[img] = scaled
	return scaled
}

func fill(dst *image.RGBA, c color.RGBA) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// blendLinear writes old*(1-p) + new*p per channel.
func blendLinear(dst, old, new *image.RGBA, p float32) {
	a := uint32(p*256 + 0.5)
	if a > 256 {
		a = 256
	}
	inv := 256 - a
	n := len(dst.Pix)
	for i := 0; i < n; i++ {
		dst.Pix[i] = uint8((uint32(old.Pix[i])*inv + uint32(new.Pix[i])*a) >> 8)
	}
}

// wipe reveals the new image behind a hard edge along one of the six axis
// functions, matching the shader's axisCoord.
func (s *softwareCompositor) wipe(dst, old, new *image.RGBA, st *State) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	axis := wipeAxis(st.Direction)
	p := float64(st.Progress)
	for y := 0; y < h; y++ {
		fy := (float64(y) + 0.5) / float64(h)
		for x := 0; x < w; x++ {
			fx := (float64(x) + 0.5) / float64(w)
			var c float64
			switch axis {
			case 0:
				c = fx
			case 1:
				c = 1 - fx
			case 2:
				c = fy
			case 3:
				c = 1 - fy
			case 4:
				c = (fx + fy) / 2
			default:
				c = (1 - fx + fy) / 2
			}
			src := old
			if c <= p {
				src = new
			}
			i := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			copy(dst.Pix[i:i+4], src.Pix[i:i+4])
		}
	}
}

// slide draws the new image as the stable background and blits the old image
// translated along the direction vector. Peel shares this reduced form.
func (s *softwareCompositor) slide(dst, old, new *image.RGBA, st *State) {
	b := dst.Bounds()
	draw.Draw(dst, b, new, new.Bounds().Min, draw.Src)

	dx, dy := st.Direction.Vector()
	// Screen-space offset: +y direction moves up, image rows grow down.
	ox := int(float32(b.Dx()) * float32(st.Progress) * dx)
	oy := int(float32(b.Dy()) * float32(st.Progress) * -dy)
	r := b.Add(image.Pt(ox, oy)).Intersect(b)
	if !r.Empty() {
		draw.Draw(dst, r, old, old.Bounds().Min.Add(r.Min.Sub(b.Min)).Sub(image.Pt(ox, oy)), draw.Src)
	}
}

// regionReveal shows the new image in grid cells whose hashed threshold the
// progress has passed, approximating the staggered wave of the block
// effects with clipped rectangle draws.
func (s *softwareCompositor) regionReveal(dst, old, new *image.RGBA, st *State) {
	cols, rows := st.Cols, st.Rows
	if cols <= 0 || rows <= 0 {
		cols, rows = 8, 8
	}
	b := dst.Bounds()
	draw.Draw(dst, b, old, old.Bounds().Min, draw.Src)

	cw := float64(b.Dx()) / float64(cols)
	ch := float64(b.Dy()) / float64(rows)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			delay := cellHash(cx, cy, st.Seed) * 0.35
			if float64(st.Progress)*1.5-delay < 0.5 {
				// Cell not yet past its reveal threshold.
				continue
			}
			r := image.Rect(
				b.Min.X+int(float64(cx)*cw),
				b.Min.Y+int(float64(cy)*ch),
				b.Min.X+int(float64(cx+1)*cw),
				b.Min.Y+int(float64(cy+1)*ch),
			).Intersect(b)
			if !r.Empty() {
				draw.Draw(dst, r, new, new.Bounds().Min.Add(r.Min.Sub(b.Min)), draw.Src)
			}
		}
	}
}

// cellHash mirrors the shader's hash1 well enough for a deterministic
// per-cell stagger in [0,1).
func cellHash(x, y int, seed float32) float64 {
	v := math.Sin(float64(x)*127.1+float64(y)*311.7+float64(seed)*57.0) * 43758.5453123
	return v - math.Floor(v)
}
