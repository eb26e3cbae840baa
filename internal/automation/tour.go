package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/fractal"
)

// Tour is a scripted list of places to render.
type Tour struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Waypoints   []Waypoint `yaml:"waypoints"`
}

// Waypoint names a place either by preset or by coordinates.
type Waypoint struct {
	Name         string  `yaml:"name"`
	Preset       string  `yaml:"preset,omitempty"`
	Re           float64 `yaml:"re"`
	Im           float64 `yaml:"im"`
	Size         float64 `yaml:"size"`
	MaxStepCount uint    `yaml:"max_step_count,omitempty"`
	Palette      string  `yaml:"palette,omitempty"`
	SaveAs       string  `yaml:"save_as,omitempty"`
}

// LoadTour reads a tour from a yaml file.
func LoadTour(path string) (*Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tour Tour
	if err := yaml.Unmarshal(data, &tour); err != nil {
		return nil, err
	}
	if len(tour.Waypoints) == 0 {
		return nil, fmt.Errorf("tour %s has no waypoints", path)
	}

	return &tour, nil
}

// Viewport resolves the waypoint's location and step budget.
func (w Waypoint) Viewport() (fractal.Viewport, uint, error) {
	if w.Preset != "" {
		loc := config.FindPreset(w.Preset)
		if loc == nil {
			return fractal.Viewport{}, 0, fmt.Errorf("unknown preset %q", w.Preset)
		}
		steps := w.MaxStepCount
		if steps == 0 {
			steps = loc.MaxStepCount
		}
		return loc.Viewport(), steps, nil
	}
	v := fractal.Viewport{Position: complex(w.Re, w.Im), Size: w.Size}
	return v, w.MaxStepCount, v.Validate()
}

func (w Waypoint) output(i int, dir string) string {
	name := w.SaveAs
	if name == "" {
		name = fmt.Sprintf("waypoint_%02d.png", i)
	}
	return filepath.Join(dir, name)
}

// RunTour renders every waypoint into dir, using up to workers renders at
// once. Results keep the waypoint order. The first failure cancels the
// remaining renders and is the error returned.
func RunTour(ctx context.Context, tour *Tour, cfg *config.Config, dir string, workers int) ([]*Result, error) {
	jobs := make([]Job, len(tour.Waypoints))
	cfgs := make([]*config.Config, len(tour.Waypoints))
	for i, w := range tour.Waypoints {
		v, steps, err := w.Viewport()
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i+1, err)
		}
		c, err := Palette(cfg, w.Palette)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i+1, err)
		}
		if steps != 0 {
			cc := *c
			cc.Render.MaxStepCount = steps
			c = &cc
		}
		name := w.Name
		if name == "" {
			name = w.Preset
		}
		jobs[i] = Job{Name: name, Viewport: v, Output: w.output(i, dir)}
		cfgs[i] = c
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*Result, len(jobs))
	sem := make(chan struct{}, max(workers, 1))

	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := Render(ctx, cfgs[idx], jobs[idx])
			if err != nil {
				// recorded before cancel so siblings stopped by it never win
				once.Do(func() { first = fmt.Errorf("waypoint %d: %w", idx+1, err) })
				cancel()
				return
			}
			results[idx] = res
		}(i)
	}
	wg.Wait()

	if first != nil {
		return nil, first
	}
	return results, nil
}
