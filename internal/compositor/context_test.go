package compositor

import "testing"

func TestContextHappyPath(t *testing.T) {
	c := NewContext()
	if c.State() != ContextUninitialized {
		t.Fatalf("new context state = %v", c.State())
	}
	if c.CanRender() {
		t.Error("uninitialized context claims renderable")
	}
	if err := c.BeginInit(); err != nil {
		t.Fatal(err)
	}
	if err := c.CompleteInit("NVIDIA Corporation", "GeForce RTX 3060/PCIe", "3.3.0"); err != nil {
		t.Fatal(err)
	}
	if !c.CanRender() || !c.ShadersUsable() {
		t.Error("ready hardware context should render with shaders")
	}
	if err := c.BeginTeardown(); err != nil {
		t.Fatal(err)
	}
	if c.CanRender() {
		t.Error("destroying context claims renderable")
	}
	if err := c.FinishTeardown(); err != nil {
		t.Fatal(err)
	}
	if c.State() != ContextDestroyed {
		t.Errorf("final state = %v, want destroyed", c.State())
	}
}

func TestContextInvalidTransitions(t *testing.T) {
	c := NewContext()
	if err := c.CompleteInit("v", "r", "1"); err == nil {
		t.Error("CompleteInit before BeginInit should fail")
	}
	if err := c.MarkLost(); err == nil {
		t.Error("MarkLost before ready should fail")
	}
	if err := c.BeginTeardown(); err == nil {
		t.Error("BeginTeardown before ready should fail")
	}
	if err := c.BeginInit(); err != nil {
		t.Fatal(err)
	}
	if err := c.BeginInit(); err == nil {
		t.Error("double BeginInit should fail")
	}
}

func TestContextInitFailure(t *testing.T) {
	c := NewContext()
	c.BeginInit()
	if err := c.FailInit(); err != nil {
		t.Fatal(err)
	}
	if c.State() != ContextError {
		t.Errorf("state = %v, want error", c.State())
	}
	// Error contexts can still be torn down.
	if err := c.BeginTeardown(); err != nil {
		t.Fatal(err)
	}
	if err := c.FinishTeardown(); err != nil {
		t.Fatal(err)
	}
}

func TestContextLoss(t *testing.T) {
	c := NewContext()
	c.BeginInit()
	c.CompleteInit("v", "r", "1")
	if err := c.MarkLost(); err != nil {
		t.Fatal(err)
	}
	if c.CanRender() {
		t.Error("lost context claims renderable")
	}
}

func TestSoftwareRasterizerDetection(t *testing.T) {
	tests := []struct {
		vendor   string
		renderer string
		want     bool
	}{
		{"Mesa", "llvmpipe (LLVM 15.0.7, 256 bits)", true},
		{"Mesa/X.org", "softpipe", true},
		{"Microsoft Corporation", "GDI Generic", true},
		{"VMware, Inc.", "SVGA3D; build: RELEASE", true},
		{"Mesa", "Software Rasterizer", true},
		{"NVIDIA Corporation", "GeForce GTX 1080/PCIe/SSE2", false},
		{"AMD", "Radeon RX 6700 XT", false},
		{"Intel", "Mesa Intel(R) UHD Graphics 620", false},
	}
	for _, tc := range tests {
		if got := detectSoftwareRasterizer(tc.vendor, tc.renderer); got != tc.want {
			t.Errorf("detectSoftwareRasterizer(%q, %q) = %v, want %v", tc.vendor, tc.renderer, got, tc.want)
		}
	}
}

func TestSoftwareRasterizerDemotesShaders(t *testing.T) {
	c := NewContext()
	c.BeginInit()
	c.CompleteInit("Mesa", "llvmpipe (LLVM 15.0.7)", "3.3")
	if !c.CanRender() {
		t.Error("software context should still be renderable")
	}
	if c.ShadersUsable() {
		t.Error("software context must not report shaders usable")
	}
}
