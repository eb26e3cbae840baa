package config

import (
	"sort"

	"github.com/san-kum/mandel/internal/fractal"
)

// Location is a named place worth visiting.
type Location struct {
	Re, Im float64
	Size   float64
	// MaxStepCount is a step budget that resolves the location at one
	// iteration per palette entry.
	MaxStepCount uint
}

func (l *Location) Viewport() fractal.Viewport {
	return fractal.Viewport{Position: complex(l.Re, l.Im), Size: l.Size}
}

var Presets = map[string]map[string]*Location{
	"classic": {
		"home":     {Re: -0.5, Im: 0, Size: 3, MaxStepCount: 50},
		"seahorse": {Re: -0.75, Im: 0.1, Size: 0.05, MaxStepCount: 100},
		"elephant": {Re: 0.285, Im: 0.01, Size: 0.02, MaxStepCount: 100},
		"needle":   {Re: -1.99, Im: 0, Size: 0.02, MaxStepCount: 80},
	},
	"deep": {
		"spiral":        {Re: -0.761574, Im: -0.0847596, Size: 0.0001, MaxStepCount: 400},
		"minibrot":      {Re: -1.7548776662, Im: 0, Size: 0.04, MaxStepCount: 200},
		"triple_spiral": {Re: -0.088, Im: 0.654, Size: 0.01, MaxStepCount: 200},
	},
}

func GetPreset(group, name string) *Location {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	loc, ok := groupPresets[name]
	if !ok {
		return nil
	}
	return loc
}

// FindPreset looks a location up by name across all groups.
func FindPreset(name string) *Location {
	for _, group := range Presets {
		if loc, ok := group[name]; ok {
			return loc
		}
	}
	return nil
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Groups lists preset groups in sorted order.
func Groups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
