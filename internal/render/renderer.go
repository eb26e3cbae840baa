// Package render sequences the evaluator, colorizer and display cache into
// the frame-level contract used by the frontends.
//
// A rendering cycle moves between two states:
//
//	Computing --RenderStep--> Computing   (steps done < target)
//	Computing --RenderStep--> Complete    (steps done == target)
//	Complete  --Flush-------> Complete    (colorize + cache update)
//	any       --Reset-------> Computing   (steps done = 0)
//
// Render may be called in any state and always reprojects the last flushed
// image onto the live viewport.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/san-kum/mandel/internal/colorize"
	"github.com/san-kum/mandel/internal/display"
	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/logx"
	"github.com/san-kum/mandel/internal/palette"
)

// State is the phase of the current rendering cycle.
type State int

const (
	Computing State = iota
	Complete
)

func (s State) String() string {
	if s == Complete {
		return "complete"
	}
	return "computing"
}

// Stage names used in initialization errors.
const (
	StageComputation = "Computation"
	StageColoring    = "Coloring"
	StageCaching     = "Caching"
)

// Options configures a Renderer. Zero values fall back to defaults.
type Options struct {
	// Evaluator defaults to a CPU evaluator.
	Evaluator     fractal.Evaluator
	Coloring      colorize.Mode
	Background    color.RGBA
	DisplayWidth  int
	DisplayHeight int
	MaxStepCount  uint
}

// Renderer owns the three stages and the step counter.
type Renderer struct {
	eval    fractal.Evaluator
	colors  *colorize.Colorizer
	cache   *display.Cache
	steps   fractal.StepCounter
	flushed bool
	ready   bool
	status  string
	smooth  bool
}

func New(opts Options) *Renderer {
	ev := opts.Evaluator
	if ev == nil {
		ev = fractal.NewCPU()
	}
	bg := opts.Background
	if bg == (color.RGBA{}) {
		bg = display.DefaultBackground
	}
	w, h := opts.DisplayWidth, opts.DisplayHeight
	if w <= 0 || h <= 0 {
		w, h = ev.Resolution(), ev.Resolution()
	}
	r := &Renderer{
		eval:   ev,
		colors: colorize.New(opts.Coloring),
		cache:  display.New(w, h, bg),
		steps:  fractal.StepCounter{Target: max(opts.MaxStepCount, 1)},
	}
	r.updateMaxLifetime()
	return r
}

// Initialize initializes every stage in pipeline order and stops at the first
// failure. The returned error is a *fractal.StageError; Status holds the
// same message.
func (r *Renderer) Initialize() error {
	stages := []struct {
		name  string
		stage fractal.Stage
	}{
		{StageComputation, r.eval},
		{StageColoring, r.colors},
		{StageCaching, r.cache},
	}
	for _, s := range stages {
		if err := s.stage.Initialize(); err != nil {
			serr := &fractal.StageError{Stage: s.name, Wrapped: err}
			r.status = serr.Error()
			logx.Logger().Error("stage initialization failed", "stage", s.name, "err", err)
			return serr
		}
	}
	r.updateMaxLifetime()
	r.ready = true
	r.status = ""
	return nil
}

// Ready reports whether Initialize succeeded.
func (r *Renderer) Ready() bool { return r.ready }

// Status returns the initialization failure message, or "" when ready.
func (r *Renderer) Status() string { return r.status }

// Reset discards the in-flight computation.
func (r *Renderer) Reset() {
	r.eval.Reset()
	r.steps.Done = 0
	r.flushed = false
}

// RenderStep advances the evaluator by one step while computing.
func (r *Renderer) RenderStep() {
	if r.steps.Complete() {
		return
	}
	r.eval.Step()
	r.steps.Done++
	if r.steps.Complete() {
		logx.Logger().Debug("computation complete", "steps", r.steps.Done, "max_lifetime", r.MaxLifetime())
	}
}

// Flush colorizes the finished computation and makes it the display
// baseline. It fails with fractal.ErrNotComplete while still computing.
func (r *Renderer) Flush() error {
	if !r.steps.Complete() {
		return fmt.Errorf("render: flush at step %d of %d: %w", r.steps.Done, r.steps.Target, fractal.ErrNotComplete)
	}
	r.colors.SetSourceGrids(r.eval.Output())
	img := r.colors.Colorize()
	r.cache.UpdateCache(img, r.eval.Viewport())
	r.flushed = true
	return nil
}

// Flushed reports whether the current cycle has been flushed.
func (r *Renderer) Flushed() bool { return r.flushed }

// Render reprojects the cached image onto the current viewport.
func (r *Renderer) Render() *image.RGBA {
	return r.cache.Render(r.eval.Viewport())
}

// Pixels renders and returns the frame as packed RGB bytes, reusing buf.
func (r *Renderer) Pixels(buf []byte) []byte {
	return display.RGB(r.Render(), buf)
}

func (r *Renderer) State() State {
	if r.steps.Complete() {
		return Complete
	}
	return Computing
}

// IsDone reports whether the step target has been reached.
func (r *Renderer) IsDone() bool { return r.steps.Complete() }

func (r *Renderer) Steps() fractal.StepCounter { return r.steps }

// SetViewport moves the computation to v. Any change resets the cycle. A
// viewport that cannot be rendered is rejected and the current one kept.
func (r *Renderer) SetViewport(v fractal.Viewport) {
	if err := v.Validate(); err != nil {
		logx.Logger().Warn("viewport rejected", "viewport", v.String(), "err", err)
		return
	}
	if v == r.eval.Viewport() {
		return
	}
	r.eval.SetViewport(v)
	r.Reset()
}

func (r *Renderer) SetViewportPosition(p complex128) {
	v := r.eval.Viewport()
	v.Position = p
	r.SetViewport(v)
}

func (r *Renderer) SetViewportSize(s float64) {
	v := r.eval.Viewport()
	v.Size = s
	r.SetViewport(v)
}

func (r *Renderer) Viewport() fractal.Viewport { return r.eval.Viewport() }

// DisplayViewport returns the viewport of the image currently cached.
func (r *Renderer) DisplayViewport() fractal.Viewport { return r.cache.Viewport() }

// SetResolution picks the smallest power of two holding n pixels per side
// and resets.
func (r *Renderer) SetResolution(n int) {
	r.SetResolutionPower(fractal.ResolutionPowerFor(n))
}

func (r *Renderer) SetResolutionPower(p uint) {
	r.eval.SetResolutionPower(p)
	r.Reset()
}

func (r *Renderer) Resolution() int { return r.eval.Resolution() }

func (r *Renderer) SetIterationsPerStep(k uint) {
	r.eval.SetIterationsPerStep(k)
	r.updateMaxLifetime()
	r.Reset()
}

func (r *Renderer) IterationsPerStep() uint { return r.eval.IterationsPerStep() }

// SetMaxStepCount changes the step target, at least 1. It does not reset: a
// raised target resumes computing from the current state.
func (r *Renderer) SetMaxStepCount(n uint) {
	r.steps.Target = max(n, 1)
	r.updateMaxLifetime()
}

func (r *Renderer) MaxStepCount() uint { return r.steps.Target }

// MaxLifetime is the iteration count colored as interior.
// It saturates at math.MaxUint32.
func (r *Renderer) MaxLifetime() uint32 {
	n := uint64(r.steps.Target) * uint64(r.eval.IterationsPerStep())
	return uint32(min(n, math.MaxUint32))
}

func (r *Renderer) updateMaxLifetime() {
	r.colors.SetMaxLifetime(r.MaxLifetime())
}

func (r *Renderer) SetColorTable(t palette.Table) { r.colors.SetColorTable(t) }

func (r *Renderer) ColorTable() palette.Table { return r.colors.ColorTable() }

func (r *Renderer) SetColoring(m colorize.Mode) { r.colors.SetMode(m) }

func (r *Renderer) Coloring() colorize.Mode { return r.colors.Mode() }

// SetSmoothPan selects bilinear instead of nearest-neighbor resampling when
// the cached image is reprojected.
func (r *Renderer) SetSmoothPan(on bool) {
	r.smooth = on
	if on {
		r.cache.SetSampler(draw.ApproxBiLinear)
	} else {
		r.cache.SetSampler(draw.NearestNeighbor)
	}
}

func (r *Renderer) SmoothPan() bool { return r.smooth }

func (r *Renderer) SetDisplaySize(w, h int) { r.cache.SetDisplaySize(w, h) }

func (r *Renderer) DisplaySize() (int, int) { return r.cache.DisplaySize() }

// Output exposes the evaluator's latest grids, e.g. for statistics.
func (r *Renderer) Output() *fractal.Grids { return r.eval.Output() }

// Image returns the cached (last flushed) image.
func (r *Renderer) Image() *image.RGBA { return r.cache.Cached() }

// Evaluator returns the evaluator driving the computation.
func (r *Renderer) Evaluator() fractal.Evaluator { return r.eval }
