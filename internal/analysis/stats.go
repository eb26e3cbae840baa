package analysis

import (
	"github.com/san-kum/mandel/internal/fractal"
)

// Stats summarizes one grid.
type Stats struct {
	Cells        int     `json:"cells"`
	Interior     int     `json:"interior"`
	Escaped      int     `json:"escaped"`
	MinLifetime  uint32  `json:"min_lifetime"`
	MaxLifetime  uint32  `json:"max_lifetime"`
	MeanLifetime float64 `json:"mean_lifetime"`
	// Histogram counts escaped cells by lifetime in equal-width buckets
	// over [0, maxLife).
	Histogram []int `json:"histogram"`
}

// InteriorFraction is the share of cells that reached maxLife.
func (s Stats) InteriorFraction() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.Interior) / float64(s.Cells)
}

// Area estimates the area of the set inside v.
func (s Stats) Area(v fractal.Viewport) float64 {
	return s.InteriorFraction() * v.Size * v.Size
}

// Compute gathers statistics for g, counting cells at or past maxLife as
// interior. MinLifetime, MaxLifetime and MeanLifetime cover escaped cells.
func Compute(g *fractal.Grids, maxLife uint32, buckets int) Stats {
	buckets = max(buckets, 1)
	maxLife = max(maxLife, 1)
	st := Stats{Histogram: make([]int, buckets)}
	if g == nil {
		return st
	}

	var sum float64
	for _, life := range g.Lifetime {
		st.Cells++
		if life >= maxLife {
			st.Interior++
			continue
		}
		if st.Escaped == 0 || life < st.MinLifetime {
			st.MinLifetime = life
		}
		if life > st.MaxLifetime {
			st.MaxLifetime = life
		}
		st.Escaped++
		sum += float64(life)
		b := int(uint64(life) * uint64(buckets) / uint64(maxLife))
		st.Histogram[b]++
	}
	if st.Escaped > 0 {
		st.MeanLifetime = sum / float64(st.Escaped)
	}
	return st
}

// HistogramSeries returns the histogram as floats for plotting.
func (s Stats) HistogramSeries() []float64 {
	out := make([]float64, len(s.Histogram))
	for i, c := range s.Histogram {
		out[i] = float64(c)
	}
	return out
}

// InteriorProfile resets ev and runs it for steps steps, recording after
// each one the fraction of cells that have not escaped yet.
func InteriorProfile(ev fractal.Evaluator, steps uint) []float64 {
	ev.Reset()
	profile := make([]float64, 0, steps)
	for i := uint(0); i < steps; i++ {
		ev.Step()
		g := ev.Output()
		alive := 0
		for k := range g.Value {
			if !g.Escaped(k) {
				alive++
			}
		}
		profile = append(profile, float64(alive)/float64(len(g.Value)))
	}
	return profile
}
