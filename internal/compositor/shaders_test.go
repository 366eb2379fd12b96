package compositor

import (
	"strconv"
	"strings"
	"testing"
)

// smoothstepEdges extracts the first two arguments of every smoothstep call
// in a shader source.
func smoothstepEdges(src string) [][2]string {
	var out [][2]string
	for i := 0; ; {
		j := strings.Index(src[i:], "smoothstep(")
		if j < 0 {
			break
		}
		k := i + j + len("smoothstep(")
		depth := 1
		last := k
		var args []string
		for ; k < len(src) && depth > 0; k++ {
			switch src[k] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					args = append(args, strings.TrimSpace(src[last:k]))
				}
			case ',':
				if depth == 1 {
					args = append(args, strings.TrimSpace(src[last:k]))
					last = k + 1
				}
			}
		}
		if len(args) >= 2 {
			out = append(out, [2]string{args[0], args[1]})
		}
		i = k
	}
	return out
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// smoothstep(edge0, edge1, x) with edge0 >= edge1 is undefined behavior in
// GLSL. Every call in the shader set must order its edges; the usual symptom
// of a reversed pair is an effect that plays backwards.
func TestShaderSmoothstepEdgesOrdered(t *testing.T) {
	for key, src := range shaderSources {
		for _, edges := range smoothstepEdges(src.fragment) {
			lo, hi := edges[0], edges[1]
			f0, err0 := strconv.ParseFloat(lo, 64)
			f1, err1 := strconv.ParseFloat(hi, 64)
			if err0 == nil && err1 == nil {
				if f0 >= f1 {
					t.Errorf("%s: smoothstep(%s, %s, ...) has reversed edges", key, lo, hi)
				}
				continue
			}
			// Edges that share a base expression and differ by an added or
			// subtracted offset: the "+" side must be the upper edge.
			p := commonPrefix(lo, hi)
			r0 := strings.TrimSpace(lo[len(p):])
			r1 := strings.TrimSpace(hi[len(p):])
			reversed := (strings.HasPrefix(r0, "+") && (r1 == "" || strings.HasPrefix(r1, "-"))) ||
				(r0 == "" && strings.HasPrefix(r1, "-"))
			if reversed {
				t.Errorf("%s: smoothstep(%s, %s, ...) has reversed edges", key, lo, hi)
			}
		}
	}
}

// The raindrops reveal must open as each wavefront expands: a pixel at
// distance d switches to the new image once the radius passes it, so the
// radius is the smoothstep value and d-0.05/d+0.05 are the ordered edges.
// With the edges the other way round the whole frame starts revealed and the
// transition plays backwards.
func TestRaindropsRevealTracksWavefront(t *testing.T) {
	frag := shaderSources["raindrops"].fragment
	if !strings.Contains(frag, "smoothstep(d - 0.05, d + 0.05, radius)") {
		t.Error("raindrops reveal is not an ordered smoothstep of the wavefront radius")
	}
}

// The warp reveal's lower edge sits at r itself, so at progress 0 the reveal
// is zero for every radius (including the screen centre) and the first frame
// is exactly the old image.
func TestWarpRevealClosedAtStart(t *testing.T) {
	frag := shaderSources["warp"].fragment
	if !strings.Contains(frag, "smoothstep(r, r + 0.25, uProgress * 1.25)") {
		t.Error("warp reveal must be fully closed at progress 0 for all radii")
	}
}
