package compositor

import (
	"errors"
	"testing"
)

// testProgramCache returns a cache whose compile step is replaced, so the
// memoization logic can be exercised without a GL context.
func testProgramCache(compile func(v, f string) (uint32, error)) (*ProgramCache, *int) {
	attempts := 0
	deleted := 0
	c := NewProgramCache()
	c.compile = func(v, f string) (uint32, error) {
		attempts++
		return compile(v, f)
	}
	c.lookupUniforms = func(handle uint32, names []string) map[string]int32 {
		locs := make(map[string]int32, len(names))
		for i, name := range names {
			locs[name] = int32(i)
		}
		return locs
	}
	c.deleteProgram = func(uint32) { deleted++ }
	return c, &attempts
}

func TestProgramCacheCompilesOnce(t *testing.T) {
	c, attempts := testProgramCache(func(v, f string) (uint32, error) { return 42, nil })

	p1 := c.Get("crossfade")
	if p1 == nil || p1.Handle != 42 {
		t.Fatalf("Get(crossfade) = %+v, want handle 42", p1)
	}
	p2 := c.Get("crossfade")
	if p2 != p1 {
		t.Error("second Get did not return the cached program")
	}
	if *attempts != 1 {
		t.Errorf("compile attempts = %d, want 1", *attempts)
	}
}

func TestProgramCacheFailureContainment(t *testing.T) {
	c, attempts := testProgramCache(func(v, f string) (uint32, error) {
		return 0, errors.New("forced compile failure")
	})

	const n = 50
	for i := 0; i < n; i++ {
		if p := c.Get("warp"); p != nil {
			t.Fatalf("Get on failed effect returned %+v, want nil", p)
		}
	}
	if *attempts != 1 {
		t.Errorf("compile attempts = %d, want exactly 1 for %d calls", *attempts, n)
	}
	if !c.Failed("warp") {
		t.Error("warp not memoized as failed")
	}
}

func TestProgramCacheUnknownKey(t *testing.T) {
	c, attempts := testProgramCache(func(v, f string) (uint32, error) { return 1, nil })
	if p := c.Get("no-such-effect"); p != nil {
		t.Errorf("Get(unknown) = %+v, want nil", p)
	}
	if *attempts != 0 {
		t.Errorf("compile attempted for unknown key")
	}
}

func TestProgramCacheCleanupResetsFailures(t *testing.T) {
	fail := true
	c, attempts := testProgramCache(func(v, f string) (uint32, error) {
		if fail {
			return 0, errors.New("boom")
		}
		return 7, nil
	})

	c.Get("peel")
	c.Cleanup()
	if c.Failed("peel") {
		t.Error("Cleanup did not clear the failed set")
	}

	// After an explicit reset, compilation may be attempted again.
	fail = false
	if p := c.Get("peel"); p == nil {
		t.Error("Get after Cleanup should retry compilation")
	}
	if *attempts != 2 {
		t.Errorf("compile attempts = %d, want 2", *attempts)
	}

	// Cleanup is idempotent.
	c.Cleanup()
	c.Cleanup()
}

func TestProgramUniformLocations(t *testing.T) {
	c, _ := testProgramCache(func(v, f string) (uint32, error) { return 3, nil })
	p := c.Get("slide")
	if p == nil {
		t.Fatal("Get(slide) = nil")
	}
	if loc := p.Loc("uDirection"); loc < 0 {
		t.Errorf("Loc(uDirection) = %d, want cached location", loc)
	}
	if loc := p.Loc("uNotAUniform"); loc != -1 {
		t.Errorf("Loc(unknown) = %d, want -1", loc)
	}
}

func TestShaderSourcesCoverAllEffects(t *testing.T) {
	for kind, entry := range effects {
		src, ok := shaderSources[entry.programKey]
		if !ok {
			t.Errorf("%v: no shader source for program key %q", kind, entry.programKey)
			continue
		}
		if src.vertex == "" || src.fragment == "" {
			t.Errorf("%v: empty shader stage", kind)
		}
		for _, u := range []string{"uTexOld", "uProgress"} {
			found := false
			for _, name := range src.uniforms {
				if name == u {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%v: uniform %q not declared in source table", kind, u)
			}
		}
	}
	if _, ok := shaderSources["static"]; !ok {
		t.Error("static blit program source missing")
	}
}
