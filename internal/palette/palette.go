// Package palette builds the color lookup tables used by the colorizer.
package palette

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"

	"github.com/san-kum/mandel/internal/fractal"
)

// Channels is the number of bytes per entry in the flat table form.
const Channels = 3

// Table is an ordered list of escape-time colors. Entry 0 is also the
// interior color. A usable table is never empty.
type Table []color.RGBA

// Default returns the 8-entry grayscale ramp 0, 32, ..., 224.
func Default() Table {
	t := make(Table, 8)
	for i := range t {
		v := uint8(i * 32)
		t[i] = color.RGBA{v, v, v, 0xff}
	}
	return t
}

// FromBytes builds a table from count entries of channels bytes each. Only
// the first three channels of every entry are used.
func FromBytes(count, channels int, data []byte) (Table, error) {
	if count <= 0 {
		return nil, fractal.ErrEmptyColorTable
	}
	if channels < Channels {
		return nil, fmt.Errorf("palette: need at least %d channels, got %d", Channels, channels)
	}
	if len(data) < count*channels {
		return nil, fmt.Errorf("palette: %d bytes is too short for %d entries of %d channels", len(data), count, channels)
	}
	t := make(Table, count)
	for i := range t {
		p := data[i*channels:]
		t[i] = color.RGBA{p[0], p[1], p[2], 0xff}
	}
	return t, nil
}

// Bytes returns the table as a flat RGB sequence.
func (t Table) Bytes() []byte {
	b := make([]byte, 0, len(t)*Channels)
	for _, c := range t {
		b = append(b, c.R, c.G, c.B)
	}
	return b
}

// Interior returns the color of cells that never escaped.
func (t Table) Interior() color.RGBA {
	if len(t) == 0 {
		return color.RGBA{A: 0xff}
	}
	return t[0]
}

// Equal reports whether two tables hold the same colors.
func (t Table) Equal(o Table) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// FromImage reads the top row of img, left to right, as table entries.
// Alpha is dropped.
func FromImage(img image.Image) (Table, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fractal.ErrEmptyColorTable
	}
	t := make(Table, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		c := color.NRGBAModel.Convert(img.At(x, b.Min.Y)).(color.NRGBA)
		t = append(t, color.RGBA{c.R, c.G, c.B, 0xff})
	}
	return t, nil
}

// Load decodes a PNG, JPEG, GIF or BMP file and reads its top row.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("palette: decode %s: %w", path, err)
	}
	t, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("palette: %s image %s: %w", format, path, err)
	}
	return t, nil
}

// Gradient returns n colors blended in Lab space through the given hex
// stops, evenly spaced.
func Gradient(n int, stops ...string) (Table, error) {
	if n <= 0 || len(stops) == 0 {
		return nil, fractal.ErrEmptyColorTable
	}
	cs := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("palette: stop %d: %w", i, err)
		}
		cs[i] = c
	}

	t := make(Table, n)
	for i := range t {
		if len(cs) == 1 || n == 1 {
			t[i] = toRGBA(cs[0])
			continue
		}
		pos := float64(i) / float64(n-1) * float64(len(cs)-1)
		seg := min(int(pos), len(cs)-2)
		t[i] = toRGBA(cs[seg].BlendLab(cs[seg+1], pos-float64(seg)).Clamped())
	}
	return t, nil
}

// Hues returns n fully saturated colors walking the hue circle, preceded by
// black for the interior.
func Hues(n int) Table {
	n = max(n, 2)
	t := make(Table, n)
	t[0] = color.RGBA{A: 0xff}
	for i := 1; i < n; i++ {
		h := 360 * float64(i-1) / float64(n-1)
		t[i] = toRGBA(colorful.Hsv(h, 0.85, 1))
	}
	return t
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 0xff}
}

// ParseColor parses a "#rrggbb" hex color.
func ParseColor(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("palette: color %q: %w", s, err)
	}
	return toRGBA(c), nil
}
