package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Render.Resolution != 512 {
		t.Errorf("expected resolution 512, got %d", cfg.Render.Resolution)
	}
	if cfg.Window.Width != 720 || cfg.Window.Height != 720 {
		t.Errorf("expected 720x720 window, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if v := cfg.Viewport(); v.Position != complex(-0.5, 0) || v.Size != 3 {
		t.Errorf("unexpected default viewport %v", v)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mandel.yaml")

	cfg := DefaultConfig()
	cfg.Render.MaxStepCount = 123
	cfg.Render.Coloring = "smooth"
	cfg.Camera.CenterRe = -0.743643887037151
	cfg.Palette.Name = "fire"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Render.MaxStepCount != 123 || got.Render.Coloring != "smooth" {
		t.Errorf("render section not restored: %+v", got.Render)
	}
	if got.Camera.CenterRe != cfg.Camera.CenterRe {
		t.Errorf("center lost precision: %v != %v", got.Camera.CenterRe, cfg.Camera.CenterRe)
	}
	if got.Palette.Name != "fire" {
		t.Errorf("expected palette fire, got %s", got.Palette.Name)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("render:\n  resolution: 256\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.Resolution != 256 {
		t.Errorf("expected resolution 256, got %d", cfg.Render.Resolution)
	}
	if cfg.Render.MaxStepCount != DefaultMaxStepCount {
		t.Errorf("expected default max step count, got %d", cfg.Render.MaxStepCount)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"size":     "camera:\n  size: 0\n",
		"coloring": "render:\n  coloring: plaid\n",
		"backend":  "render:\n  backend: vulkan\n",
		"window":   "window:\n  width: -1\n",
		"yaml":     "render: [\n",
	}
	for name, body := range tests {
		path := filepath.Join(t.TempDir(), name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestGetPreset(t *testing.T) {
	loc := GetPreset("classic", "home")
	if loc == nil {
		t.Fatal("expected preset, got nil")
	}
	if loc.Viewport().Size != 3 {
		t.Errorf("expected size 3, got %f", loc.Size)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("classic", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "home") != nil {
		t.Error("expected nil for nonexistent group")
	}
}

func TestFindPreset(t *testing.T) {
	if FindPreset("spiral") == nil {
		t.Error("expected to find spiral in deep presets")
	}
	if FindPreset("nowhere") != nil {
		t.Error("expected nil for unknown name")
	}
}

func TestListPresets(t *testing.T) {
	for _, group := range Groups() {
		names := ListPresets(group)
		if len(names) == 0 {
			t.Errorf("expected presets for %s", group)
		}
		for _, n := range names {
			if err := GetPreset(group, n).Viewport().Validate(); err != nil {
				t.Errorf("%s/%s: %v", group, n, err)
			}
		}
	}

	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent group")
	}
}
