package control

import (
	"math"

	"github.com/san-kum/mandel/internal/fractal"
)

const (
	// MinSize is the smallest viewport that still resolves distinct cells in
	// double precision at the maximum resolution.
	MinSize = 1e-13
	// MaxSize keeps the whole set comfortably in view.
	MaxSize = 16.0
	// minZoomFactor bounds a single zoom update so the size stays positive.
	minZoomFactor = 0.1
)

// Camera holds the viewport the user is looking at. Zoom is the side length
// of the viewport, so moving covers the same fraction of the screen at every
// depth.
type Camera struct {
	Position  complex128
	Zoom      float64
	MoveSpeed float64
	ZoomSpeed float64
}

func NewCamera(v fractal.Viewport, moveSpeed, zoomSpeed float64) *Camera {
	return &Camera{
		Position:  v.Position,
		Zoom:      v.Size,
		MoveSpeed: moveSpeed,
		ZoomSpeed: zoomSpeed,
	}
}

// Move shifts the center by dir*t*MoveSpeed*Zoom.
func (c *Camera) Move(dir complex128, t float64) {
	c.Position += dir * complex(t*c.MoveSpeed*c.Zoom, 0)
}

// ZoomBy scales the size by 1 + t*dir*ZoomSpeed. Positive dir zooms out.
func (c *Camera) ZoomBy(dir, t float64) {
	f := math.Max(1+t*dir*c.ZoomSpeed, minZoomFactor)
	c.Zoom = math.Min(math.Max(c.Zoom*f, MinSize), MaxSize)
}

func (c *Camera) Viewport() fractal.Viewport {
	return fractal.Viewport{Position: c.Position, Size: c.Zoom}
}

func (c *Camera) SetViewport(v fractal.Viewport) {
	c.Position = v.Position
	c.Zoom = v.Size
}
