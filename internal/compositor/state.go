package compositor

import (
	"fmt"
	"image"
)

// Kind identifies one of the transition effects. The set is closed; dispatch
// over it happens through the effects table in renderers.go.
type Kind int

const (
	KindNone Kind = iota
	KindCrossfade
	KindSlide
	KindWipe
	KindBlockFlip
	KindBlockSpin
	KindBlinds
	KindDiffuse
	KindPeel
	KindWarp
	KindRaindrops
	KindCrumble
	KindParticle
)

var kindNames = map[Kind]string{
	KindNone:      "none",
	KindCrossfade: "crossfade",
	KindSlide:     "slide",
	KindWipe:      "wipe",
	KindBlockFlip: "blockflip",
	KindBlockSpin: "blockspin",
	KindBlinds:    "blinds",
	KindDiffuse:   "diffuse",
	KindPeel:      "peel",
	KindWarp:      "warp",
	KindRaindrops: "raindrops",
	KindCrumble:   "crumble",
	KindParticle:  "particle",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// KindFromName maps an effect name (as used in config and IPC trigger
// requests) back to its Kind. Returns KindNone for unknown names.
func KindFromName(name string) Kind {
	for k, s := range kindNames {
		if s == name && k != KindNone {
			return k
		}
	}
	return KindNone
}

// Direction is the 8-way movement direction used by slide, wipe, peel,
// block-spin and directional particle transitions.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirUpLeft
	DirUpRight
	DirDownLeft
	DirDownRight
)

// Vector returns the unit-ish movement vector for the direction in
// normalized screen coordinates (+x right, +y up).
func (d Direction) Vector() (float32, float32) {
	switch d {
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	case DirUp:
		return 0, 1
	case DirDown:
		return 0, -1
	case DirUpLeft:
		return -1, 1
	case DirUpRight:
		return 1, 1
	case DirDownLeft:
		return -1, -1
	case DirDownRight:
		return 1, -1
	}
	return 1, 0
}

// Horizontal reports whether the direction's dominant axis is horizontal.
// Diagonals count as horizontal; block-spin uses this to pick its spin axis.
func (d Direction) Horizontal() bool {
	return d != DirUp && d != DirDown
}

// ShapeMode selects the per-cell reveal mask used by the diffuse transition.
type ShapeMode int

const (
	ShapeRect ShapeMode = iota
	ShapeMembrane
	ShapeLines
	ShapeDiamonds
	ShapeBlobs
)

// ParticleMode selects how the particle transition moves its particles.
type ParticleMode int

const (
	ParticleDirectional ParticleMode = iota
	ParticleScatter
	ParticleSwirl
)

// State carries everything a renderer needs for one transition besides the
// GPU resources themselves: the two images, the externally driven progress,
// and the per-effect tunables. A State is created by one of the Start calls,
// advanced by Update, and never reused once cleared.
type State struct {
	Kind Kind

	Old *image.RGBA
	New *image.RGBA

	// Progress is monotonic non-decreasing in [0,1], already eased and
	// desync-compensated by the orchestrator.
	Progress float32

	Direction Direction
	Cols      int
	Rows      int
	Strips    int
	Seed      float32
	Shape     ShapeMode

	// Warp / raindrops tunables.
	SwirlStrength float32
	Ripples       int

	// Particle tunables.
	PMode     ParticleMode
	PRadius   float32
	PTurns    float32
	PTrail    float32
	PShaded   bool
}

// Validate rejects malformed parameters at the Start boundary so they can be
// logged and dropped instead of reaching a renderer.
func (s *State) Validate() error {
	switch s.Kind {
	case KindBlockFlip, KindBlinds, KindDiffuse:
		if s.Cols <= 0 || s.Rows <= 0 {
			return fmt.Errorf("%s: grid must be positive, got %dx%d", s.Kind, s.Cols, s.Rows)
		}
	case KindPeel:
		if s.Strips <= 0 {
			return fmt.Errorf("peel: strips must be positive, got %d", s.Strips)
		}
	case KindRaindrops:
		if s.Ripples < 1 || s.Ripples > 8 {
			return fmt.Errorf("raindrops: ripples must be in [1,8], got %d", s.Ripples)
		}
	case KindCrumble:
		if s.Cols <= 0 || s.Rows <= 0 {
			return fmt.Errorf("crumble: piece grid must be positive, got %dx%d", s.Cols, s.Rows)
		}
	case KindParticle:
		if s.PRadius <= 0 {
			return fmt.Errorf("particle: radius must be positive, got %v", s.PRadius)
		}
	}
	return nil
}

// validImage reports whether img can be uploaded and composited.
func validImage(img *image.RGBA) bool {
	return img != nil && img.Bounds().Dx() > 0 && img.Bounds().Dy() > 0
}
