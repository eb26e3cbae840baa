package fractal

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// EscapeRadius2 is the squared magnitude past which a cell is considered
	// escaped and freezes.
	EscapeRadius2 = 4.0

	// MinResolutionPower and MaxResolutionPower bound the grid side to
	// [2, 4096] cells.
	MinResolutionPower = 1
	MaxResolutionPower = 12
)

// Viewport is an axis-aligned square in the complex plane. Position is the
// center of the square and Size its side length.
type Viewport struct {
	Position complex128
	Size     float64
}

// BottomLeft returns the corner the grid origin maps to.
func (v Viewport) BottomLeft() complex128 {
	return v.Position - complex(v.Size/2, v.Size/2)
}

// Point returns the complex coordinate of cell (i, j) of an r×r grid. Row 0
// is the bottom edge.
func (v Viewport) Point(i, j, r int) complex128 {
	step := v.Size / float64(r)
	return v.BottomLeft() + complex(float64(i)*step, float64(j)*step)
}

// Validate reports whether the viewport can be rendered.
func (v Viewport) Validate() error {
	re, im := real(v.Position), imag(v.Position)
	switch {
	case math.IsNaN(re) || math.IsInf(re, 0) || math.IsNaN(im) || math.IsInf(im, 0):
		return fmt.Errorf("%w: center %v", ErrInvalidViewport, v.Position)
	case !(v.Size > 0) || math.IsInf(v.Size, 0):
		return fmt.Errorf("%w: size %v", ErrInvalidViewport, v.Size)
	}
	return nil
}

func (v Viewport) String() string {
	return fmt.Sprintf("center=(%.17g, %.17g) size=%.17g", real(v.Position), imag(v.Position), v.Size)
}

// Grids holds the per-cell iteration state for one buffer slot. Cells are
// stored row-major with row 0 at the bottom of the viewport.
type Grids struct {
	Res      int
	Value    []complex128
	Lifetime []uint32
}

// NewGrids allocates zeroed grids with the given side length.
func NewGrids(res int) *Grids {
	n := res * res
	return &Grids{
		Res:      res,
		Value:    make([]complex128, n),
		Lifetime: make([]uint32, n),
	}
}

// Index returns the flat offset of cell (i, j).
func (g *Grids) Index(i, j int) int {
	return j*g.Res + i
}

// At returns the value and lifetime of cell (i, j).
func (g *Grids) At(i, j int) (complex128, uint32) {
	k := g.Index(i, j)
	return g.Value[k], g.Lifetime[k]
}

// Clear zeroes every cell.
func (g *Grids) Clear() {
	clear(g.Value)
	clear(g.Lifetime)
}

// Escaped reports whether cell k has frozen.
func (g *Grids) Escaped(k int) bool {
	z := g.Value[k]
	return real(z)*real(z)+imag(z)*imag(z) > EscapeRadius2
}

// StepCounter tracks progress toward a complete rendering.
type StepCounter struct {
	Done   uint
	Target uint
}

// Complete reports whether the step target has been reached.
func (s StepCounter) Complete() bool {
	return s.Done >= s.Target
}

// Progress returns the completed fraction in [0, 1].
func (s StepCounter) Progress() float64 {
	if s.Target == 0 {
		return 1
	}
	return math.Min(1, float64(s.Done)/float64(s.Target))
}

// ResolutionPowerFor returns the smallest p such that 2^p >= n, clamped to
// [MinResolutionPower, MaxResolutionPower].
func ResolutionPowerFor(n int) uint {
	if n <= 2 {
		return MinResolutionPower
	}
	p := uint(bits.Len(uint(n - 1)))
	return ClampResolutionPower(p)
}

// ClampResolutionPower limits p to the supported range.
func ClampResolutionPower(p uint) uint {
	if p < MinResolutionPower {
		return MinResolutionPower
	}
	if p > MaxResolutionPower {
		return MaxResolutionPower
	}
	return p
}
