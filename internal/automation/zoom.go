package automation

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mandel/internal/config"
	"github.com/san-kum/mandel/internal/export"
	"github.com/san-kum/mandel/internal/fractal"
)

// ZoomSweep renders a geometric zoom from one size to another around a
// fixed center.
type ZoomSweep struct {
	Center   complex128
	FromSize float64
	ToSize   float64
	Frames   int
}

// Sizes returns the viewport size of every frame. Consecutive sizes share a
// constant ratio.
func (z ZoomSweep) Sizes() []float64 {
	if z.Frames <= 1 {
		return []float64{z.FromSize}
	}
	ratio := math.Pow(z.ToSize/z.FromSize, 1/float64(z.Frames-1))
	sizes := make([]float64, z.Frames)
	s := z.FromSize
	for i := range sizes {
		sizes[i] = s
		s *= ratio
	}
	sizes[len(sizes)-1] = z.ToSize
	return sizes
}

// RunZoom renders the sweep and writes it as an animated GIF to path.
func RunZoom(ctx context.Context, z ZoomSweep, cfg *config.Config, path string, delay int) ([]*Result, error) {
	if !(z.FromSize > 0) || !(z.ToSize > 0) {
		return nil, fmt.Errorf("zoom sizes must be positive: %w", fractal.ErrInvalidViewport)
	}
	rec := export.NewRecorder(delay, 0)
	var results []*Result
	for i, size := range z.Sizes() {
		res, err := Render(ctx, cfg, Job{
			Name:     fmt.Sprintf("frame %d", i),
			Viewport: fractal.Viewport{Position: z.Center, Size: size},
		})
		if err != nil {
			return results, err
		}
		rec.Add(res.Image)
		results = append(results, res)
	}
	return results, rec.Save(path)
}
