package automation

import (
	"context"
	"errors"
	"image/gif"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/storage"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Render.Resolution = 16
	cfg.Render.MaxStepCount = 4
	return cfg
}

func TestRenderWritesImageAndState(t *testing.T) {
	out := filepath.Join(t.TempDir(), "sub", "home.png")
	v := fractal.Viewport{Position: complex(-0.5, 0), Size: 3}

	res, err := Render(context.Background(), smallConfig(), Job{Name: "home", Viewport: v, Output: out})
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 4 {
		t.Errorf("steps = %d, want 4", res.Steps)
	}
	if res.Image.Bounds().Dx() != 16 {
		t.Errorf("image width %d", res.Image.Bounds().Dx())
	}
	if res.Stats.Interior == 0 || res.Stats.Escaped == 0 {
		t.Errorf("home view should have both interior and escaped cells: %+v", res.Stats)
	}
	if _, err := os.Stat(out); err != nil {
		t.Error(err)
	}
	got, err := storage.LoadState(StatePath(out))
	if err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Errorf("state %v, want %v", got, v)
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Render(ctx, smallConfig(), Job{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStatePath(t *testing.T) {
	if got := StatePath("out/a.b.png"); got != "out/a.b.txt" {
		t.Errorf("got %q", got)
	}
}

func TestLoadTour(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tour.yaml")
	data := `name: test
waypoints:
  - preset: seahorse
    max_step_count: 3
  - name: custom
    re: 0.25
    im: 0
    size: 0.5
    palette: fire
    save_as: custom.bmp
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	tour, err := LoadTour(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tour.Waypoints) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(tour.Waypoints))
	}

	v, steps, err := tour.Waypoints[0].Viewport()
	if err != nil || steps != 3 || v != config.FindPreset("seahorse").Viewport() {
		t.Errorf("preset waypoint: %v %d %v", v, steps, err)
	}

	cfg := smallConfig()
	results, err := RunTour(context.Background(), tour, cfg, dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Steps != 3 || results[1].Steps != cfg.Render.MaxStepCount {
		t.Errorf("steps %d, %d", results[0].Steps, results[1].Steps)
	}
	for _, name := range []string{"waypoint_00.png", "waypoint_00.txt", "custom.bmp", "custom.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Error(err)
		}
	}
}

func TestRunTourRejectsBadWaypoint(t *testing.T) {
	tour := &Tour{Waypoints: []Waypoint{{Preset: "nowhere"}}}
	if _, err := RunTour(context.Background(), tour, smallConfig(), t.TempDir(), 1); err == nil {
		t.Error("expected error for unknown preset")
	}

	tour = &Tour{Waypoints: []Waypoint{{Size: 0}}}
	_, err := RunTour(context.Background(), tour, smallConfig(), t.TempDir(), 1)
	if !errors.Is(err, fractal.ErrInvalidViewport) {
		t.Errorf("expected ErrInvalidViewport, got %v", err)
	}
}

func TestRunTourReturnsFailureNotCancellation(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blocker"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	tour := &Tour{Waypoints: []Waypoint{
		{Name: "long", Re: -0.5, Size: 3, MaxStepCount: 1 << 20},
		{Name: "unwritable", Re: -0.5, Size: 3, MaxStepCount: 1, SaveAs: filepath.Join("blocker", "x.png")},
	}}

	_, err := RunTour(context.Background(), tour, smallConfig(), dir, 2)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("got the cancellation of a sibling render: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "waypoint 2:") {
		t.Errorf("error %q does not name the failing waypoint", err)
	}
}

func TestZoomSweepSizes(t *testing.T) {
	sizes := ZoomSweep{FromSize: 4, ToSize: 0.25, Frames: 5}.Sizes()
	want := []float64{4, 2, 1, 0.5, 0.25}
	for i := range want {
		if math.Abs(sizes[i]-want[i]) > 1e-12 {
			t.Errorf("size %d = %v, want %v", i, sizes[i], want[i])
		}
	}
	if got := (ZoomSweep{FromSize: 2, Frames: 1}).Sizes(); len(got) != 1 || got[0] != 2 {
		t.Errorf("single frame: %v", got)
	}
}

func TestRunZoom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zoom.gif")
	z := ZoomSweep{Center: complex(-0.75, 0.1), FromSize: 1, ToSize: 0.1, Frames: 3}

	results, err := RunZoom(context.Background(), z, smallConfig(), path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(results))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("gif has %d frames", len(anim.Image))
	}

	if _, err := RunZoom(context.Background(), ZoomSweep{FromSize: 0, ToSize: 1}, smallConfig(), path, 10); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestProfile(t *testing.T) {
	profile, err := Profile(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(profile) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(profile))
	}
	for i := 1; i < len(profile); i++ {
		if profile[i] > profile[i-1] {
			t.Errorf("interior fraction grew at step %d: %v", i, profile)
		}
	}
}
