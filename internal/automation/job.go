// Package automation renders without a window: single jobs, yaml tours of
// waypoints and zoom sequences.
package automation

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/mandel/internal/analysis"
	"github.com/san-kum/mandel/internal/app"
	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/export"
	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/logx"
	"github.com/san-kum/mandel/internal/palette"
	"github.com/san-kum/mandel/internal/render"
	"github.com/san-kum/mandel/internal/storage"
)

const defaultBuckets = 32

// Job is one headless render. Zero fields take their value from the
// config passed to Render.
type Job struct {
	Name     string
	Viewport fractal.Viewport
	// Output is the image path; a state file is written next to it. Empty
	// skips writing.
	Output string
	// Buckets is the histogram size of the result's stats.
	Buckets int
}

// Result describes a finished job.
type Result struct {
	Name     string           `json:"name"`
	Viewport fractal.Viewport `json:"-"`
	Output   string           `json:"output,omitempty"`
	Steps    uint             `json:"steps"`
	Elapsed  time.Duration    `json:"elapsed"`
	Stats    analysis.Stats   `json:"stats"`
	Image    *image.RGBA      `json:"-"`
}

// Render runs job to completion on the CPU evaluator. The context is checked
// between steps.
func Render(ctx context.Context, cfg *config.Config, job Job) (*Result, error) {
	table, _, err := app.LoadPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}
	v := job.Viewport
	if v == (fractal.Viewport{}) {
		v = cfg.Viewport()
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := render.New(render.Options{
		Coloring:     cfg.ColoringMode(),
		MaxStepCount: cfg.Render.MaxStepCount,
	})
	app.Configure(r, cfg, table)
	r.SetViewport(v)
	if err := r.Initialize(); err != nil {
		return nil, err
	}

	start := time.Now()
	for !r.IsDone() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		r.RenderStep()
	}
	if err := r.Flush(); err != nil {
		return nil, err
	}

	res := &Result{
		Name:     job.Name,
		Viewport: v,
		Output:   job.Output,
		Steps:    r.Steps().Done,
		Elapsed:  time.Since(start),
		Stats:    analysis.Compute(r.Output(), r.MaxLifetime(), cmp.Or(job.Buckets, defaultBuckets)),
		Image:    r.Image(),
	}
	if job.Output != "" {
		if err := Save(res); err != nil {
			return nil, err
		}
	}
	logx.Logger().Info("render finished", "name", job.Name, "viewport", v, "elapsed", res.Elapsed)
	return res, nil
}

// Save writes the image and its state file, "<output>.txt" with the image
// extension replaced.
func Save(res *Result) error {
	if dir := filepath.Dir(res.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := export.SaveImage(res.Output, res.Image); err != nil {
		return err
	}
	return storage.SaveState(StatePath(res.Output), res.Viewport)
}

// StatePath returns the state file path for an image path.
func StatePath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".txt"
}

// Palette resolves a palette name for a job, "" keeping the config's.
func Palette(cfg *config.Config, name string) (*config.Config, error) {
	if name == "" {
		return cfg, nil
	}
	if _, err := palette.Get(name); err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	c := *cfg
	c.Palette = config.PaletteConfig{Name: name}
	return &c, nil
}

// Profile runs the configured view on a bare evaluator and returns the
// interior fraction after every step.
func Profile(cfg *config.Config) ([]float64, error) {
	table, _, err := app.LoadPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}
	ev := fractal.NewCPU()
	ev.SetResolutionPower(fractal.ResolutionPowerFor(cfg.Render.Resolution))
	ev.SetViewport(cfg.Viewport())
	k := cfg.Render.IterationsPerStep
	if k == 0 {
		k = uint(len(table))
	}
	ev.SetIterationsPerStep(k)
	if err := ev.Initialize(); err != nil {
		return nil, err
	}
	return analysis.InteriorProfile(ev, max(cfg.Render.MaxStepCount, 1)), nil
}
