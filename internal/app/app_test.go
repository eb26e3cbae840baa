package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/mandel/internal/colorize"
	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/control"
	"github.com/san-kum/mandel/internal/fractal"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 16, 16
	cfg.Render.Resolution = 16
	cfg.Render.MaxStepCount = 3
	cfg.Snapshots.Dir = filepath.Join(t.TempDir(), "snaps")
	return cfg
}

func newContext(t *testing.T) *Context {
	t.Helper()
	c, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewDefaultsIterationsToTableSize(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)

	g.Expect(c.Renderer.Ready()).To(BeTrue())
	g.Expect(c.Renderer.Resolution()).To(Equal(16))
	g.Expect(c.Renderer.IterationsPerStep()).To(Equal(uint(len(c.Renderer.ColorTable()))))
	g.Expect(c.PaletteName()).To(Equal("grayscale"))
}

func TestNewReportsStageError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Camera.Size = 0

	_, err := New(cfg, nil)

	var serr *fractal.StageError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if serr.Stage != "Computation" {
		t.Errorf("stage = %q", serr.Stage)
	}
}

func TestFrameRunsToCompletionAndFlushesOnce(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)

	for range 3 {
		img := c.Frame(0.016)
		g.Expect(img.Bounds().Dx()).To(Equal(16))
	}
	g.Expect(c.Renderer.IsDone()).To(BeTrue())
	g.Expect(c.Renderer.Flushed()).To(BeTrue())
	g.Expect(c.Renderer.Image()).NotTo(BeNil())
	g.Expect(c.Progress()).To(Equal(1.0))

	// further frames do not step past the target
	c.Frame(0.016)
	g.Expect(c.Renderer.Steps().Done).To(Equal(uint(3)))
}

func TestPauseAndStep(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)

	g.Expect(c.Handle(control.ActionTogglePause)).To(Succeed())
	g.Expect(c.Paused()).To(BeTrue())
	c.Frame(0.016)
	g.Expect(c.Renderer.Steps().Done).To(BeZero())

	g.Expect(c.Handle(control.ActionStep)).To(Succeed())
	c.Frame(0.016)
	g.Expect(c.Renderer.Steps().Done).To(Equal(uint(1)))
	g.Expect(c.Stepping()).To(BeTrue())

	c.Frame(0.016)
	c.Frame(0.016)
	g.Expect(c.Renderer.IsDone()).To(BeTrue())
	g.Expect(c.Stepping()).To(BeFalse())

	g.Expect(c.Handle(control.ActionTogglePause)).To(Succeed())
	g.Expect(c.Paused()).To(BeFalse())
}

func TestPrecision(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)
	for range 3 {
		c.Frame(0)
	}

	g.Expect(c.Handle(control.ActionPrecisionUp)).To(Succeed())
	g.Expect(c.Renderer.MaxStepCount()).To(Equal(uint(4)))
	g.Expect(c.Renderer.Steps().Done).To(BeZero())
	g.Expect(c.Stepping()).To(BeTrue())

	c.Renderer.SetMaxStepCount(1)
	g.Expect(c.Handle(control.ActionPrecisionDown)).To(Succeed())
	g.Expect(c.Renderer.MaxStepCount()).To(Equal(uint(1)))
}

func TestCameraMovementResets(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)
	for range 3 {
		c.Frame(0)
	}
	before := c.Renderer.Viewport()

	c.Keys.KeyDown("d")
	c.Frame(0.1)

	g.Expect(real(c.Renderer.Viewport().Position)).To(BeNumerically(">", real(before.Position)))
	g.Expect(c.Renderer.Steps().Done).To(Equal(uint(1)))
	// the last finished image stays on screen
	g.Expect(c.Renderer.DisplayViewport()).To(Equal(before))
}

func TestSnapshot(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)

	g.Expect(c.Handle(control.ActionSnapshot)).To(Succeed())
	g.Expect(c.Status()).To(HavePrefix("snapshot failed"))

	for range 3 {
		c.Frame(0)
	}
	g.Expect(c.Handle(control.ActionSnapshot)).To(Succeed())
	g.Expect(c.Status()).To(Equal("saved mandelbrot_snapshot_0"))

	for _, ext := range []string{".bmp", ".txt", ".json"} {
		_, err := os.Stat(filepath.Join(c.Store.Dir(), "mandelbrot_snapshot_0"+ext))
		g.Expect(err).NotTo(HaveOccurred())
	}
	v, err := c.Store.LoadViewport("mandelbrot_snapshot_0")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(v).To(Equal(c.Renderer.DisplayViewport()))
}

func TestColoringAndPaletteCycle(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)
	for range 3 {
		c.Frame(0)
	}

	g.Expect(c.Handle(control.ActionCycleColoring)).To(Succeed())
	g.Expect(c.Renderer.Coloring()).To(Equal(colorize.Smooth))
	g.Expect(c.Renderer.IsDone()).To(BeTrue())
	g.Expect(c.Renderer.Image()).NotTo(BeNil())

	g.Expect(c.Handle(control.ActionNextPalette)).To(Succeed())
	g.Expect(c.PaletteName()).To(Equal("rainbow"))
	g.Expect(c.Renderer.IterationsPerStep()).To(Equal(uint(32)))
	g.Expect(c.Renderer.Steps().Done).To(BeZero())
}

func TestHomeAndDebug(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)
	home := c.Renderer.Viewport()

	c.SetViewport(fractal.Viewport{Position: complex(0.25, 0.5), Size: 0.125})
	g.Expect(c.Handle(control.ActionDebug)).To(Succeed())
	g.Expect(c.Status()).To(Equal("position (0.25, 0.5) size 0.125"))

	g.Expect(c.Handle(control.ActionHome)).To(Succeed())
	g.Expect(c.Renderer.Viewport()).To(Equal(home))
	g.Expect(c.Camera.Viewport()).To(Equal(home))
}

func TestResize(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)
	c.Frame(0)

	c.Resize(32, 20)
	w, h := c.Renderer.DisplaySize()
	g.Expect([]int{w, h}).To(Equal([]int{32, 20}))
	g.Expect(c.Renderer.Steps().Done).To(BeZero())

	c.Frame(0)
	c.Resize(32, 20)
	g.Expect(c.Renderer.Steps().Done).To(Equal(uint(1)))
}

func TestSmoothPanFromConfig(t *testing.T) {
	g := NewWithT(t)
	cfg := testConfig(t)
	cfg.Render.SmoothPan = true

	c, err := New(cfg, nil)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(c.Renderer.SmoothPan()).To(BeTrue())
	g.Expect(newContext(t).Renderer.SmoothPan()).To(BeFalse())
}

func TestQuit(t *testing.T) {
	c := newContext(t)
	if err := c.Handle(control.ActionQuit); !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
}

func TestTimingMetrics(t *testing.T) {
	g := NewWithT(t)
	c := newContext(t)

	c.Frame(0.02)
	c.Frame(0.02)
	g.Expect(c.FPS()).To(BeNumerically("~", 50, 1e-6))
	g.Expect(c.StepTime()).To(BeNumerically(">=", 0))
	g.Expect(c.Summary()).To(ContainSubstring("ms/step"))
}
