package analysis

import (
	"github.com/guptarohit/asciigraph"
)

// Plot draws series as a terminal line chart. Empty series render as "".
func Plot(series []float64, caption string, width, height int) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
