package screensaver

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

type ScalingMode string

const (
	ScalingModeCenter        ScalingMode = "center"
	ScalingModeStretch       ScalingMode = "stretched"
	ScalingModeFitHorizontal ScalingMode = "horizontal"
	ScalingModeFitVertical   ScalingMode = "vertical"
)

// FitImage maps src onto a w by h canvas according to the scaling mode.
// Areas the image does not cover stay black; areas outside the canvas are
// cropped.
func FitImage(src *image.RGBA, w, h int, mode ScalingMode) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if src == nil || src.Bounds().Dx() == 0 || src.Bounds().Dy() == 0 || w <= 0 || h <= 0 {
		return dst
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()

	var target image.Rectangle
	switch mode {
	case ScalingModeStretch:
		target = dst.Bounds()
	case ScalingModeFitHorizontal:
		scaled := sh * w / sw
		target = image.Rect(0, (h-scaled)/2, w, (h-scaled)/2+scaled)
	case ScalingModeFitVertical:
		scaled := sw * h / sh
		target = image.Rect((w-scaled)/2, 0, (w-scaled)/2+scaled, h)
	default: // center, unscaled
		target = image.Rect((w-sw)/2, (h-sh)/2, (w-sw)/2+sw, (h-sh)/2+sh)
		draw.Draw(dst, target.Intersect(dst.Bounds()), src,
			src.Bounds().Min.Add(target.Intersect(dst.Bounds()).Min.Sub(target.Min)), draw.Src)
		return dst
	}

	if target.Dx() == sw && target.Dy() == sh {
		draw.Draw(dst, target.Intersect(dst.Bounds()), src, src.Bounds().Min, draw.Src)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, target, src, src.Bounds(), draw.Src, nil)
	return dst
}
