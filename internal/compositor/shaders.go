package compositor

// Shader sources for every effect, keyed by the program cache key. All
// fragment shaders share the same contract: old image on unit 0, new image
// on unit 1, uProgress already eased in [0,1], and a safety tail that forces
// full convergence to the new image near the end so procedural effects can
// never leave stale pixels at progress 1.

type shaderSource struct {
	vertex   string
	fragment string
	uniforms []string
}

const quadVertexShader = `#version 330 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
    gl_Position = vec4(aPos, 0.0, 1.0);
    vUV = aUV;
}
`

const boxVertexShader = `#version 330 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aUV;
uniform mat4 uModel;
uniform mat4 uProj;
out vec3 vNormal;
out vec2 vUV;
void main() {
    gl_Position = uProj * uModel * vec4(aPos, 1.0);
    vNormal = aNormal;
    vUV = aUV;
}
`

// fragCommon is prepended to every quad fragment shader.
const fragCommon = `#version 330 core
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uTexOld;
uniform sampler2D uTexNew;
uniform float uProgress;
uniform vec2 uResolution;

float hash1(vec2 p) {
    return fract(sin(dot(p, vec2(127.1, 311.7))) * 43758.5453123);
}

vec2 hash2(vec2 p) {
    return vec2(hash1(p), hash1(p + vec2(57.0, 113.0)));
}

// Smoothed threshold near the end of the transition. Mixing the final color
// toward the new image by this amount guarantees a clean last frame.
float safetyTail(float p) {
    return smoothstep(0.88, 1.0, p);
}
`

var shaderSources = map[string]shaderSource{
	"static": {
		vertex: quadVertexShader,
		fragment: `#version 330 core
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uTexOld;
void main() {
    fragColor = texture(uTexOld, vUV);
}
`,
		uniforms: []string{"uTexOld"},
	},

	"crossfade": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
void main() {
    vec4 oldC = texture(uTexOld, vUV);
    vec4 newC = texture(uTexNew, vUV);
    fragColor = mix(oldC, newC, uProgress);
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution"},
	},

	"slide": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform vec2 uDirection;
void main() {
    // Both images translate along the direction vector; the new image
    // trails one full screen behind and wins where they overlap.
    vec2 shift = uDirection * uProgress;
    vec2 oldUV = vUV + shift;
    vec2 newUV = vUV + shift - uDirection;
    vec4 c;
    if (newUV.x >= 0.0 && newUV.x <= 1.0 && newUV.y >= 0.0 && newUV.y <= 1.0) {
        c = texture(uTexNew, newUV);
    } else if (oldUV.x >= 0.0 && oldUV.x <= 1.0 && oldUV.y >= 0.0 && oldUV.y <= 1.0) {
        c = texture(uTexOld, oldUV);
    } else {
        c = texture(uTexNew, clamp(newUV, 0.0, 1.0));
    }
    fragColor = mix(c, texture(uTexNew, vUV), safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uDirection"},
	},

	"wipe": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform int uAxis;
// Axis coordinate in [0,1] along which the hard edge sweeps. 0..3 are the
// cardinals, 4 and 5 the two diagonals.
float axisCoord(vec2 uv) {
    if (uAxis == 0) return uv.x;             // left to right
    if (uAxis == 1) return 1.0 - uv.x;       // right to left
    if (uAxis == 2) return uv.y;             // top to bottom
    if (uAxis == 3) return 1.0 - uv.y;       // bottom to top
    if (uAxis == 4) return (uv.x + uv.y) * 0.5;
    return (1.0 - uv.x + uv.y) * 0.5;
}
void main() {
    float c = axisCoord(vUV);
    vec4 col = c <= uProgress ? texture(uTexNew, vUV) : texture(uTexOld, vUV);
    fragColor = mix(col, texture(uTexNew, vUV), safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uAxis"},
	},

	"blockflip": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform vec2 uGrid;
void main() {
    vec2 cell = floor(vUV * uGrid);
    vec2 local = fract(vUV * uGrid);

    // Staggered wave: cells near the centre lead, with a hashed jitter so
    // the front is ragged rather than a clean ring.
    vec2 centre = uGrid * 0.5;
    float bias = distance(cell + 0.5, centre) / max(length(centre), 1.0) * 0.15;
    float delay = bias + hash1(cell) * 0.35;
    float lp = clamp((uProgress * 1.5 - delay), 0.0, 1.0);

    // Each cell flips about its horizontal midline: the visible half
    // narrows, flips, then widens showing the new image.
    float h = abs(local.y - 0.5) * 2.0;
    vec4 col;
    if (lp < 0.5) {
        float vis = 1.0 - lp * 2.0;
        col = h <= vis ? texture(uTexOld, vUV) : texture(uTexNew, vUV);
    } else {
        float vis = (lp - 0.5) * 2.0;
        col = h <= vis ? texture(uTexNew, vUV) : texture(uTexOld, vUV);
    }
    fragColor = mix(col, texture(uTexNew, vUV), safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uGrid"},
	},

	"blinds": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform vec2 uGrid;
void main() {
    vec2 cell = floor(vUV * uGrid);
    vec2 local = fract(vUV * uGrid);
    float delay = hash1(cell) * 0.3;
    float lp = clamp(uProgress * 1.45 - delay, 0.0, 1.0);
    // Each slat opens from its top edge downward.
    vec4 col = local.y <= lp ? texture(uTexNew, vUV) : texture(uTexOld, vUV);
    fragColor = mix(col, texture(uTexNew, vUV), safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uGrid"},
	},

	"diffuse": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform vec2 uGrid;
uniform int uShape;
// Per-cell mask value in [0,1]: how much of the cell is revealed at local
// progress lp, under the selected shape.
float shapeMask(vec2 local, float lp) {
    if (uShape == 1) { // membrane: growing soft disc
        return 1.0 - smoothstep(lp * 0.85 - 0.15, lp * 0.85, distance(local, vec2(0.5)));
    }
    if (uShape == 2) { // lines
        return step(abs(fract(local.y * 4.0) - 0.5) * 2.0, lp);
    }
    if (uShape == 3) { // diamonds
        return step((abs(local.x - 0.5) + abs(local.y - 0.5)), lp);
    }
    if (uShape == 4) { // amorphous blobs
        float n = hash1(floor(local * 6.0)) * 0.5;
        return step(distance(local, vec2(0.5)) + n * (1.0 - lp), lp * 1.1);
    }
    return step(max(abs(local.x - 0.5), abs(local.y - 0.5)) * 2.0, lp); // rect
}
void main() {
    vec2 cell = floor(vUV * uGrid);
    vec2 local = fract(vUV * uGrid);
    float delay = hash1(cell) * 0.35;
    float lp = clamp(uProgress * 1.5 - delay, 0.0, 1.0);
    float m = shapeMask(local, lp);
    vec4 col = mix(texture(uTexOld, vUV), texture(uTexNew, vUV), m);
    fragColor = mix(col, texture(uTexNew, vUV), safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uGrid", "uShape"},
	},

	"blockspin": {
		vertex: boxVertexShader,
		fragment: `#version 330 core
in vec3 vNormal;
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uTexOld;
uniform sampler2D uTexNew;
uniform float uProgress;
// Face selection is by model-space normal: the front face carries the old
// image, the back face the new one (mesh UVs already mirrored), the edges
// render as dark glass with a specular band that moves with the spin.
void main() {
    if (vNormal.z > 0.5) {
        fragColor = texture(uTexOld, vUV);
    } else if (vNormal.z < -0.5) {
        fragColor = texture(uTexNew, vUV);
    } else {
        float band = 1.0 - smoothstep(0.0, 0.12, abs(vUV.y - uProgress));
        vec3 glass = vec3(0.06) + vec3(0.65) * band;
        fragColor = vec4(glass, 1.0);
    }
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uModel", "uProj"},
	},

	"warp": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform float uSwirl;
vec2 swirl(vec2 uv, float strength) {
    vec2 centred = uv - 0.5;
    float r = length(centred);
    float theta = atan(centred.y, centred.x) + strength * (1.0 - r) * 3.0;
    return vec2(cos(theta), sin(theta)) * r + 0.5;
}
void main() {
    // Swirl strength peaks mid-transition and decays toward the endpoints:
    // swirl in, swirl out.
    float strength = uSwirl * sin(uProgress * 3.14159265);
    vec2 uvOld = swirl(vUV, strength * uProgress);
    vec2 uvNew = swirl(vUV, -strength * (1.0 - uProgress));
    vec4 oldC = texture(uTexOld, uvOld);
    vec4 newC = texture(uTexNew, uvNew);
    // Radially biased reveal: the centre converges first. The lower edge
    // sits at r so the reveal is fully closed at progress 0 and fully open
    // at progress 1 for every radius.
    float r = distance(vUV, vec2(0.5)) / 0.7071;
    float reveal = smoothstep(r, r + 0.25, uProgress * 1.25);
    vec4 col = mix(oldC, newC, reveal);
    fragColor = mix(col, texture(uTexNew, vUV), safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uSwirl"},
	},

	"raindrops": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform int uRipples;
uniform float uSeed;
void main() {
    vec2 aspect = vec2(uResolution.x / uResolution.y, 1.0);
    vec2 uv = vUV;
    float revealed = 0.0;
    for (int i = 0; i < 8; i++) {
        if (i >= uRipples) break;
        // First wavefront is always centred; the rest spawn at hashed
        // positions with staggered start times.
        vec2 centre = vec2(0.5);
        float startAt = 0.0;
        if (i > 0) {
            centre = hash2(vec2(float(i) * 7.31, uSeed));
            startAt = hash1(vec2(uSeed, float(i) * 3.17)) * 0.4;
        }
        float lp = clamp((uProgress - startAt) / max(1.0 - startAt, 0.001), 0.0, 1.0);
        float radius = lp * 1.6;
        float d = distance((uv - centre) * aspect, vec2(0.0));
        // Displace sampling outward near the expanding wavefront.
        float ring = exp(-pow((d - radius) * 14.0, 2.0));
        vec2 dir = d > 0.0001 ? normalize((uv - centre) * aspect) : vec2(0.0);
        uv += dir * ring * 0.02 * (1.0 - uProgress);
        // A pixel the wavefront has passed shows the new image.
        revealed = max(revealed, smoothstep(d - 0.05, d + 0.05, radius));
    }
    vec4 col = mix(texture(uTexOld, uv), texture(uTexNew, uv), revealed);
    fragColor = mix(col, texture(uTexNew, vUV), safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uRipples", "uSeed"},
	},

	"peel": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform int uStrips;
uniform vec2 uDirection;
void main() {
    // Strips are banded across the axis perpendicular to the travel
    // direction. Each strip starts with a staggered delay, then slides
    // off-screen while fading; the new image is the stable background.
    float across = abs(uDirection.x) > abs(uDirection.y) ? vUV.y : vUV.x;
    float strip = floor(across * float(uStrips));
    float delay = (strip / max(float(uStrips), 1.0)) * 0.4;
    float lp = clamp((uProgress - delay) / max(1.0 - delay, 0.001), 0.0, 1.0);

    vec2 offset = vec2(uDirection.x, -uDirection.y) * lp * 1.2;
    vec2 oldUV = vUV - offset;
    vec4 newC = texture(uTexNew, vUV);
    vec4 col = newC;
    if (oldUV.x >= 0.0 && oldUV.x <= 1.0 && oldUV.y >= 0.0 && oldUV.y <= 1.0) {
        vec4 oldC = texture(uTexOld, oldUV);
        col = mix(newC, oldC, 1.0 - lp);
    }
    fragColor = mix(col, newC, safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uStrips", "uDirection"},
	},

	"crumble": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform vec2 uGrid;
uniform float uSeed;
// Procedural Voronoi crack pattern: one jittered site per grid cell, pieces
// fall with downward acceleration, drift, and crack lines that darken
// before the fall starts.
void main() {
    vec2 g = vUV * uGrid;
    vec2 cell = floor(g);

    vec2 site = vec2(0.0);
    vec2 siteCell = cell;
    float best = 1e9;
    float second = 1e9;
    for (int dy = -1; dy <= 1; dy++) {
        for (int dx = -1; dx <= 1; dx++) {
            vec2 n = cell + vec2(float(dx), float(dy));
            vec2 p = n + hash2(n + uSeed);
            float d = distance(g, p);
            if (d < best) {
                second = best;
                best = d;
                site = p;
                siteCell = n;
            } else if (d < second) {
                second = d;
            }
        }
    }

    float delay = hash1(siteCell + uSeed) * 0.45;
    float lp = clamp((uProgress - delay) / max(1.0 - delay, 0.001), 0.0, 1.0);

    // Fall with acceleration, slight rotation approximated by a shear, and
    // hashed horizontal drift.
    float fall = lp * lp * 2.2;
    float drift = (hash1(siteCell + uSeed + 17.0) - 0.5) * lp * 0.35;
    float shear = (hash1(siteCell + uSeed + 41.0) - 0.5) * lp * 0.2;
    vec2 rel = vUV - site / uGrid;
    vec2 srcUV = vUV - vec2(drift + rel.y * shear, -fall);

    vec4 newC = texture(uTexNew, vUV);
    vec4 col = newC;
    if (srcUV.y <= 1.0 && srcUV.x >= 0.0 && srcUV.x <= 1.0) {
        vec4 oldC = texture(uTexOld, srcUV);
        // Darkening crack lines along Voronoi edges before the fall.
        float edge = second - best;
        float crack = (1.0 - smoothstep(0.02, 0.14, edge)) * smoothstep(0.0, 0.08, uProgress) * (1.0 - lp);
        oldC.rgb *= 1.0 - 0.7 * crack;
        col = mix(newC, oldC, 1.0 - smoothstep(0.6, 1.0, lp));
    }
    fragColor = mix(col, newC, safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution", "uGrid", "uSeed"},
	},

	"particle": {
		vertex: quadVertexShader,
		fragment: fragCommon + `
uniform float uRadius;
uniform int uMode;
uniform vec2 uDirection;
uniform float uTurns;
uniform float uTrail;
uniform float uSeed;
uniform int uShaded;
// Pixels are grouped into circular particles on a grid of diameter uRadius*2
// (in pixels). Particles translate directionally, scatter along hashed
// directions, or spiral about the screen centre, shrinking as they go.
vec2 particleOffset(vec2 cell, float lp) {
    if (uMode == 2) { // swirl
        float ang = lp * uTurns * 6.2831853;
        vec2 centre = vec2(0.5) - (cell + 0.5) * (uRadius * 2.0) / uResolution;
        float s = sin(ang);
        float c = cos(ang);
        return centre - vec2(c * centre.x - s * centre.y, s * centre.x + c * centre.y);
    }
    vec2 dir = vec2(uDirection.x, -uDirection.y);
    if (uMode == 1) { // scatter: hashed per-particle direction
        dir = normalize(hash2(cell + uSeed) - 0.5);
    }
    return dir * lp * 1.4;
}
void main() {
    vec2 sizeUV = uRadius * 2.0 / uResolution;
    vec2 cell = floor(vUV / sizeUV);
    float delay = hash1(cell + uSeed) * 0.35;
    float lp = clamp((uProgress - delay) / max(1.0 - delay, 0.001), 0.0, 1.0);

    vec2 offset = particleOffset(cell, lp);
    vec4 newC = texture(uTexNew, vUV);
    vec4 col = newC;

    // Gather: where did the particle covering this pixel come from.
    vec2 srcUV = vUV - offset;
    vec2 srcCell = floor(srcUV / sizeUV);
    vec2 centre = (srcCell + 0.5) * sizeUV;
    float d = distance((vUV - offset - centre) / sizeUV, vec2(0.0));
    float shrink = 1.0 - lp;
    if (d <= 0.5 * shrink && srcUV.x >= 0.0 && srcUV.x <= 1.0 && srcUV.y >= 0.0 && srcUV.y <= 1.0) {
        vec4 oldC = texture(uTexOld, srcUV);
        if (uShaded == 1) {
            oldC.rgb *= 1.0 - 0.4 * lp * (d / max(shrink, 0.001));
        }
        col = oldC;
    } else if (uTrail > 0.0) {
        // Faded tap behind the particle's travel path.
        vec2 trailUV = vUV - offset * (1.0 - uTrail * 0.5);
        if (trailUV.x >= 0.0 && trailUV.x <= 1.0 && trailUV.y >= 0.0 && trailUV.y <= 1.0) {
            col = mix(newC, texture(uTexOld, trailUV), uTrail * (1.0 - lp) * 0.5);
        }
    }
    fragColor = mix(col, newC, safetyTail(uProgress));
}
`,
		uniforms: []string{"uTexOld", "uTexNew", "uProgress", "uResolution",
			"uRadius", "uMode", "uDirection", "uTurns", "uTrail", "uSeed", "uShaded"},
	},
}
