package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mandel/internal/colorize"
	"github.com/san-kum/mandel/internal/fractal"
)

const (
	DefaultWidth        = 720
	DefaultHeight       = 720
	DefaultResolution   = 512
	DefaultMaxStepCount = 50
	DefaultCenterRe     = -0.5
	DefaultCenterIm     = 0.0
	DefaultSize         = 3.0
	DefaultMoveSpeed    = 0.5
	DefaultZoomSpeed    = 1.0
	DefaultBackground   = "#000000"
	DefaultSnapshotDir  = ".mandel/snapshots"
)

type Config struct {
	Window    WindowConfig   `yaml:"window"`
	Render    RenderConfig   `yaml:"render"`
	Camera    CameraConfig   `yaml:"camera"`
	Palette   PaletteConfig  `yaml:"palette"`
	Snapshots SnapshotConfig `yaml:"snapshots"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type RenderConfig struct {
	Resolution   int  `yaml:"resolution"`
	MaxStepCount uint `yaml:"max_step_count"`
	// IterationsPerStep of 0 uses the color table size.
	IterationsPerStep uint   `yaml:"iterations_per_step"`
	Coloring          string `yaml:"coloring"`
	Backend           string `yaml:"backend"`
	Background        string `yaml:"background"`
	// SmoothPan resamples the cached image bilinearly while the camera moves.
	SmoothPan bool `yaml:"smooth_pan"`
}

type CameraConfig struct {
	CenterRe  float64 `yaml:"center_re"`
	CenterIm  float64 `yaml:"center_im"`
	Size      float64 `yaml:"size"`
	MoveSpeed float64 `yaml:"move_speed"`
	ZoomSpeed float64 `yaml:"zoom_speed"`
}

type PaletteConfig struct {
	Name string `yaml:"name"`
	File string `yaml:"file,omitempty"`
}

type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  "Mandelbrot Explorer",
		},
		Render: RenderConfig{
			Resolution:   DefaultResolution,
			MaxStepCount: DefaultMaxStepCount,
			Coloring:     "simple",
			Backend:      "cpu",
			Background:   DefaultBackground,
		},
		Camera: CameraConfig{
			CenterRe:  DefaultCenterRe,
			CenterIm:  DefaultCenterIm,
			Size:      DefaultSize,
			MoveSpeed: DefaultMoveSpeed,
			ZoomSpeed: DefaultZoomSpeed,
		},
		Palette:   PaletteConfig{Name: "grayscale"},
		Snapshots: SnapshotConfig{Dir: DefaultSnapshotDir},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that cannot be clamped into something sensible.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Viewport().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := colorize.ParseMode(c.Render.Coloring); err != nil {
		errs = append(errs, err)
	}
	switch c.Render.Backend {
	case "", "cpu", "gl":
	default:
		errs = append(errs, fmt.Errorf("config: unknown backend %q", c.Render.Backend))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("config: window size %dx%d", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}

// Viewport returns the starting viewport.
func (c *Config) Viewport() fractal.Viewport {
	return fractal.Viewport{
		Position: complex(c.Camera.CenterRe, c.Camera.CenterIm),
		Size:     c.Camera.Size,
	}
}

// SetViewport stores v as the starting viewport.
func (c *Config) SetViewport(v fractal.Viewport) {
	c.Camera.CenterRe = real(v.Position)
	c.Camera.CenterIm = imag(v.Position)
	c.Camera.Size = v.Size
}

// ColoringMode returns the parsed coloring mode, falling back to simple.
func (c *Config) ColoringMode() colorize.Mode {
	m, _ := colorize.ParseMode(c.Render.Coloring)
	return m
}
