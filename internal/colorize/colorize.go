// Package colorize turns evaluator grids into images through a color table.
package colorize

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/san-kum/mandel/internal/fractal"
	"github.com/san-kum/mandel/internal/logx"
	"github.com/san-kum/mandel/internal/palette"
)

// Mode selects how an escaped cell's lifetime maps onto the table.
type Mode int

const (
	// Simple buckets the lifetime linearly over the escaped entries.
	Simple Mode = iota
	// Smooth uses the fractional escape count and blends adjacent entries.
	Smooth
)

func (m Mode) String() string {
	switch m {
	case Simple:
		return "simple"
	case Smooth:
		return "smooth"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "simple" or "smooth".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "simple":
		return Simple, nil
	case "smooth":
		return Smooth, nil
	}
	return Simple, fmt.Errorf("colorize: unknown mode %q", s)
}

// Colorizer is the coloring stage. It borrows the source grids for the
// duration of a call and owns its output image.
type Colorizer struct {
	mode        Mode
	table       palette.Table
	maxLifetime uint32
	src         *fractal.Grids
	img         *image.RGBA
}

// New returns a colorizer with the default grayscale table.
func New(mode Mode) *Colorizer {
	return &Colorizer{
		mode:        mode,
		table:       palette.Default(),
		maxLifetime: 1,
	}
}

func (c *Colorizer) Initialize() error {
	if len(c.table) == 0 {
		return fractal.ErrEmptyColorTable
	}
	if c.mode != Simple && c.mode != Smooth {
		return fmt.Errorf("colorize: unsupported mode %v", c.mode)
	}
	return nil
}

// SetSourceGrids points the next pass at the evaluator's output.
func (c *Colorizer) SetSourceGrids(g *fractal.Grids) {
	c.src = g
}

// SetColorTable replaces the table. An empty table is ignored and the
// previous one kept.
func (c *Colorizer) SetColorTable(t palette.Table) {
	if len(t) == 0 {
		logx.Logger().Warn("ignoring empty color table", "kept", len(c.table))
		return
	}
	c.table = append(palette.Table(nil), t...)
}

func (c *Colorizer) ColorTable() palette.Table {
	return c.table
}

// SetMaxLifetime sets the lifetime that counts as never escaped.
func (c *Colorizer) SetMaxLifetime(l uint32) {
	c.maxLifetime = max(l, 1)
}

func (c *Colorizer) MaxLifetime() uint32 {
	return c.maxLifetime
}

func (c *Colorizer) SetMode(m Mode) { c.mode = m }

func (c *Colorizer) Mode() Mode { return c.mode }

func (c *Colorizer) Execute() { c.Colorize() }

// Colorize writes one pixel per cell and returns the image. Image row 0 is
// the top of the viewport. Without source grids it returns the last image.
func (c *Colorizer) Colorize() *image.RGBA {
	g := c.src
	if g == nil {
		return c.img
	}
	res := g.Res
	if c.img == nil || c.img.Bounds().Dx() != res {
		c.img = image.NewRGBA(image.Rect(0, 0, res, res))
	}

	for j := 0; j < res; j++ {
		y := res - 1 - j
		for i := 0; i < res; i++ {
			k := g.Index(i, j)
			col := c.cellColor(g.Value[k], g.Lifetime[k])
			o := c.img.PixOffset(i, y)
			p := c.img.Pix[o : o+4 : o+4]
			p[0], p[1], p[2], p[3] = col.R, col.G, col.B, 0xff
		}
	}
	return c.img
}

// Image returns the most recent output.
func (c *Colorizer) Image() *image.RGBA {
	return c.img
}

func (c *Colorizer) cellColor(z complex128, life uint32) color.RGBA {
	if life >= c.maxLifetime {
		return c.table[0]
	}
	if c.mode == Smooth {
		return SmoothColor(c.table, z, life, c.maxLifetime)
	}
	return c.table[Index(len(c.table), life, c.maxLifetime)]
}

// Index maps an escaped lifetime in [0, maxLife) onto entries 1..n-1, keeping
// entry 0 for the interior. The mapping is monotonic in life. A single-entry
// table maps everything to 0.
func Index(n int, life, maxLife uint32) int {
	if n <= 1 {
		return 0
	}
	if life >= maxLife {
		return 0
	}
	return 1 + int(uint64(life)*uint64(n-1)/uint64(maxLife))
}

// SmoothColor blends the two entries around the fractional escape count
// nu = life + 1 - log2(log|z|). Cells that have not escaped yet fall back to
// the bucket color.
func SmoothColor(t palette.Table, z complex128, life, maxLife uint32) color.RGBA {
	n := len(t)
	if n <= 2 {
		return t[Index(n, life, maxLife)]
	}
	mag2 := real(z)*real(z) + imag(z)*imag(z)
	if mag2 <= fractal.EscapeRadius2 {
		return t[Index(n, life, maxLife)]
	}
	nu := float64(life) + 1 - math.Log2(0.5*math.Log(mag2))
	f := nu / float64(maxLife)
	f = math.Max(0, math.Min(f, 1))

	pos := 1 + f*float64(n-2)
	lo := int(pos)
	if lo >= n-1 {
		return t[n-1]
	}
	return lerp(t[lo], t[lo+1], pos-float64(lo))
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}
