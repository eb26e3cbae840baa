package palette

import (
	"fmt"
	"sort"
)

// gradientStops are the named Lab gradients. Every preset starts from a dark
// stop so the interior reads as black.
var gradientStops = map[string][]string{
	"fire":     {"#000000", "#3b0a0a", "#b22222", "#ff8c00", "#ffd700", "#ffffe0"},
	"ocean":    {"#000000", "#001a33", "#0077be", "#00a8cc", "#e0f0ff"},
	"electric": {"#000000", "#1a0033", "#ff00ff", "#00ffff", "#ffffff"},
	"sunset":   {"#000000", "#2d1b2e", "#ff6b6b", "#feca57", "#fff5f5"},
	"retro":    {"#000000", "#001100", "#005500", "#00ff00", "#88ff88"},
}

// PresetSize is the number of entries generated for gradient presets.
const PresetSize = 32

// Get returns the named table. "grayscale" is the default ramp and
// "rainbow" walks the hue circle.
func Get(name string) (Table, error) {
	switch name {
	case "", "grayscale":
		return Default(), nil
	case "rainbow":
		return Hues(PresetSize), nil
	}
	stops, ok := gradientStops[name]
	if !ok {
		return nil, fmt.Errorf("palette: unknown preset %q", name)
	}
	return Gradient(PresetSize, stops...)
}

// Names lists the available presets.
func Names() []string {
	names := []string{"grayscale", "rainbow"}
	for n := range gradientStops {
		names = append(names, n)
	}
	sort.Strings(names[2:])
	return names
}
