// Package app holds the interactive session shared by the terminal and
// windowed frontends: the renderer, the camera, the keyboard and the
// pause/step state. Frontends feed it input and call Frame once per
// displayed frame.
package app

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"time"

	"github.com/san-kum/mandel/internal/colorize"
	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/control"
	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/logx"
	"github.com/san-kum/mandel/internal/metrics"
	"github.com/san-kum/mandel/internal/palette"
	"github.com/san-kum/mandel/internal/render"
	"github.com/san-kum/mandel/internal/storage"
)

// ErrQuit is returned by Handle when the user asked to quit.
var ErrQuit = errors.New("app: quit")

// Context is one interactive session.
type Context struct {
	Config   *config.Config
	Renderer *render.Renderer
	Camera   *control.Camera
	Keys     *control.Keyboard
	Store    *storage.Store

	paused   bool
	stepping bool
	status   string

	paletteName string
	home        fractal.Viewport

	stepTime  *metrics.StepTime
	frameRate *metrics.FrameRate
}

// New builds a session from cfg. ev may be nil for the CPU evaluator. The
// renderer is initialized; a failure is returned as a *fractal.StageError.
func New(cfg *config.Config, ev fractal.Evaluator) (*Context, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	table, name, err := LoadPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}
	bg, err := palette.ParseColor(cfg.Render.Background)
	if err != nil {
		return nil, err
	}

	if ev == nil {
		ev = fractal.NewCPU()
	}
	// the evaluator validates the starting viewport in Initialize
	ev.SetViewport(cfg.Viewport())
	r := render.New(render.Options{
		Evaluator:     ev,
		Coloring:      cfg.ColoringMode(),
		Background:    bg,
		DisplayWidth:  cfg.Window.Width,
		DisplayHeight: cfg.Window.Height,
		MaxStepCount:  cfg.Render.MaxStepCount,
	})
	Configure(r, cfg, table)
	if err := r.Initialize(); err != nil {
		return nil, err
	}

	v := cfg.Viewport()
	c := &Context{
		Config:      cfg,
		Renderer:    r,
		Camera:      control.NewCamera(v, cfg.Camera.MoveSpeed, cfg.Camera.ZoomSpeed),
		Keys:        control.NewKeyboard(control.DefaultBindings()),
		Store:       storage.New(cfg.Snapshots.Dir),
		paletteName: name,
		home:        v,
		stepTime:    metrics.NewStepTime(),
		frameRate:   metrics.NewFrameRate(0.1),
	}
	logx.Logger().Info("session started", "viewport", v, "resolution", r.Resolution(),
		"steps", r.MaxStepCount(), "iterations_per_step", r.IterationsPerStep(), "palette", name)
	return c, nil
}

// LoadPalette returns the table named by pc and a label for it. A file
// takes precedence over a preset name.
func LoadPalette(pc config.PaletteConfig) (palette.Table, string, error) {
	if pc.File != "" {
		t, err := palette.Load(pc.File)
		return t, pc.File, err
	}
	t, err := palette.Get(pc.Name)
	name := pc.Name
	if name == "" {
		name = "grayscale"
	}
	return t, name, err
}

// Configure applies the render settings of cfg to r, before or after
// initialization. Iterations per step of zero use the table size.
func Configure(r *render.Renderer, cfg *config.Config, table palette.Table) {
	r.SetColorTable(table)
	r.SetResolution(cfg.Render.Resolution)
	ips := cfg.Render.IterationsPerStep
	if ips == 0 {
		ips = uint(len(table))
	}
	r.SetIterationsPerStep(ips)
	r.SetMaxStepCount(cfg.Render.MaxStepCount)
	r.SetViewport(cfg.Viewport())
	r.SetSmoothPan(cfg.Render.SmoothPan)
}

// Frame runs one frame of dt seconds and returns the image to show.
func (c *Context) Frame(dt float64) *image.RGBA {
	c.frameRate.Observe(time.Duration(dt * float64(time.Second)))
	if c.Keys.Apply(c.Camera, dt) {
		c.Renderer.SetViewport(c.Camera.Viewport())
	}
	c.Advance()
	return c.Renderer.Render()
}

// Advance steps the computation when running and flushes it once it
// completes. A requested step keeps computing while paused until the
// current computation is done.
func (c *Context) Advance() {
	r := c.Renderer
	if (!c.paused || c.stepping) && !r.IsDone() {
		if r.Steps().Done == 0 {
			c.stepTime.Reset()
		}
		start := time.Now()
		r.RenderStep()
		c.stepTime.Observe(time.Since(start))
	}
	if r.IsDone() {
		if !r.Flushed() {
			// cannot fail: the computation is complete
			_ = r.Flush()
		}
		c.stepping = false
	}
}

// Handle performs a discrete action.
func (c *Context) Handle(a control.Action) error {
	r := c.Renderer
	switch a {
	case control.ActionQuit:
		return ErrQuit
	case control.ActionPrecisionUp:
		c.setPrecision(r.MaxStepCount() + 1)
	case control.ActionPrecisionDown:
		if n := r.MaxStepCount(); n > 1 {
			c.setPrecision(n - 1)
		}
	case control.ActionTogglePause:
		c.paused = !c.paused
		if c.paused {
			c.status = "paused"
		} else {
			c.status = "running"
		}
	case control.ActionStep:
		c.stepping = true
	case control.ActionSnapshot:
		id, err := c.Snapshot()
		if err != nil {
			c.status = fmt.Sprintf("snapshot failed: %v", err)
			logx.Logger().Warn("snapshot failed", "err", err)
			return nil
		}
		c.status = "saved " + id
	case control.ActionDebug:
		c.status = c.DebugString()
		logx.Logger().Info("viewport", "position", r.Viewport().Position, "size", r.Viewport().Size)
	case control.ActionCycleColoring:
		m := colorize.Smooth
		if r.Coloring() == colorize.Smooth {
			m = colorize.Simple
		}
		c.SetColoring(m)
	case control.ActionNextPalette:
		names := palette.Names()
		i := slices.Index(names, c.paletteName)
		return c.SetPalette(names[(i+1)%len(names)])
	case control.ActionHome:
		c.SetViewport(c.home)
	}
	return nil
}

func (c *Context) setPrecision(n uint) {
	c.Renderer.SetMaxStepCount(n)
	c.Renderer.Reset()
	c.stepping = true
	c.status = fmt.Sprintf("precision %d", n)
}

// SetColoring switches the coloring mode. A finished image is recolored in
// place.
func (c *Context) SetColoring(m colorize.Mode) {
	c.Renderer.SetColoring(m)
	c.recolor()
	c.status = "coloring " + m.String()
}

func (c *Context) recolor() {
	if c.Renderer.IsDone() {
		_ = c.Renderer.Flush()
	}
}

// SetPalette switches to the named preset. Iterations per step follow the
// table size unless configured.
func (c *Context) SetPalette(name string) error {
	t, err := palette.Get(name)
	if err != nil {
		return err
	}
	c.Renderer.SetColorTable(t)
	if c.Config.Render.IterationsPerStep == 0 && c.Renderer.IterationsPerStep() != uint(len(t)) {
		c.Renderer.SetIterationsPerStep(uint(len(t)))
		c.stepping = true
	} else {
		c.recolor()
	}
	c.paletteName = name
	c.status = "palette " + name
	return nil
}

// SetViewport moves the camera and the renderer to v.
func (c *Context) SetViewport(v fractal.Viewport) {
	c.Camera.SetViewport(v)
	c.Renderer.SetViewport(v)
}

// Resize sets the display size and restarts the computation.
func (c *Context) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if cw, ch := c.Renderer.DisplaySize(); cw == w && ch == h {
		return
	}
	c.Renderer.SetDisplaySize(w, h)
	c.Renderer.Reset()
}

// Snapshot saves the last completed image and its viewport.
func (c *Context) Snapshot() (string, error) {
	r := c.Renderer
	img := r.Image()
	if img == nil {
		return "", fmt.Errorf("nothing rendered yet: %w", fractal.ErrNotComplete)
	}
	return c.Store.SaveSnapshot(storage.Snapshot{
		Image:    img,
		Viewport: r.DisplayViewport(),
		Meta: storage.SnapshotMetadata{
			Resolution:        r.Resolution(),
			MaxStepCount:      r.MaxStepCount(),
			IterationsPerStep: r.IterationsPerStep(),
			Coloring:          r.Coloring().String(),
			Palette:           c.paletteName,
		},
	})
}

// DebugString formats the current viewport at full precision.
func (c *Context) DebugString() string {
	v := c.Renderer.Viewport()
	return fmt.Sprintf("position (%.17g, %.17g) size %.17g", real(v.Position), imag(v.Position), v.Size)
}

func (c *Context) Paused() bool { return c.paused }

func (c *Context) Stepping() bool { return c.stepping }

// Status returns the last status message.
func (c *Context) Status() string { return c.status }

func (c *Context) SetStatus(s string) { c.status = s }

func (c *Context) PaletteName() string { return c.paletteName }

// StepTime is the mean step duration of the current computation in
// milliseconds.
func (c *Context) StepTime() float64 { return c.stepTime.Value() }

// FPS is the smoothed frame rate seen by Frame.
func (c *Context) FPS() float64 { return c.frameRate.Value() }

// Progress returns the fraction of steps done.
func (c *Context) Progress() float64 { return c.Renderer.Steps().Progress() }

// Summary is a one-line description for status bars.
func (c *Context) Summary() string {
	r := c.Renderer
	v := r.Viewport()
	state := r.State().String()
	if c.paused {
		state = "paused"
	}
	return fmt.Sprintf("%s %3.0f%% | %.6g%+.6gi x%.3g | res %d | steps %d | %.1fms/step | %s/%s",
		state, 100*c.Progress(), real(v.Position), imag(v.Position), v.Size,
		r.Resolution(), r.MaxStepCount(), c.StepTime(), r.Coloring(), c.paletteName)
}
