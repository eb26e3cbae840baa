// Package display keeps the last completed image and reprojects it onto the
// live viewport every frame.
package display

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/san-kum/mandel/internal/fractal"
)

// DefaultBackground fills everything the cached image does not cover.
var DefaultBackground = color.RGBA{0, 0, 0, 0xff}

// Cache is the display stage. It owns the cached image and the frame it
// renders into.
type Cache struct {
	background color.RGBA
	sampler    draw.Transformer

	cached   *image.RGBA
	viewport fractal.Viewport

	width, height int
	offset        complex128
	scale         float64

	frame *image.RGBA
}

// New returns a cache that renders onto a w×h frame.
func New(w, h int, bg color.RGBA) *Cache {
	c := &Cache{
		background: bg,
		sampler:    draw.NearestNeighbor,
		scale:      1,
	}
	c.SetDisplaySize(w, h)
	return c
}

func (c *Cache) Initialize() error {
	c.allocFrame()
	return nil
}

// SetSampler swaps the resampling kernel, e.g. draw.ApproxBiLinear.
func (c *Cache) SetSampler(t draw.Transformer) {
	if t != nil {
		c.sampler = t
	}
}

// SetDisplaySize sets the frame dimensions. Non-positive values are clamped
// to one pixel.
func (c *Cache) SetDisplaySize(w, h int) {
	c.width, c.height = max(w, 1), max(h, 1)
	if c.frame != nil {
		c.allocFrame()
	}
}

func (c *Cache) DisplaySize() (int, int) {
	return c.width, c.height
}

func (c *Cache) allocFrame() {
	if c.frame == nil || c.frame.Bounds().Dx() != c.width || c.frame.Bounds().Dy() != c.height {
		c.frame = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	}
}

// Square returns the largest centered square inside the frame.
func (c *Cache) Square() image.Rectangle {
	s := min(c.width, c.height)
	x := (c.width - s) / 2
	y := (c.height - s) / 2
	return image.Rect(x, y, x+s, y+s)
}

// UpdateCache replaces the cached image and the viewport it shows. The
// pixels are copied so the caller may keep writing to img.
func (c *Cache) UpdateCache(img *image.RGBA, v fractal.Viewport) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if c.cached == nil || c.cached.Bounds().Size() != b.Size() {
		c.cached = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Copy(c.cached, image.Point{}, img, b, draw.Src, nil)
	c.viewport = v
}

// Viewport returns the viewport of the cached image.
func (c *Cache) Viewport() fractal.Viewport {
	return c.viewport
}

// Cached returns the cached image, or nil before the first UpdateCache.
func (c *Cache) Cached() *image.RGBA {
	return c.cached
}

// SetTransform sets the relative offset and scale used by Execute.
func (c *Cache) SetTransform(offset complex128, scale float64) {
	c.offset = offset
	c.scale = scale
}

// Transform returns the relative offset and scale of the last pass.
func (c *Cache) Transform() (complex128, float64) {
	return c.offset, c.scale
}

// Relative computes the offset and scale that take the cached viewport to
// cur, both in units of the cached viewport size.
func Relative(cached, cur fractal.Viewport) (complex128, float64) {
	if cached.Size <= 0 {
		return 0, 1
	}
	return (cur.Position - cached.Position) / complex(cached.Size, 0), cur.Size / cached.Size
}

// Render reprojects the cached image onto cur and returns the frame.
func (c *Cache) Render(cur fractal.Viewport) *image.RGBA {
	c.SetTransform(Relative(c.viewport, cur))
	c.Execute()
	return c.frame
}

// Frame returns the last rendered frame.
func (c *Cache) Frame() *image.RGBA {
	return c.frame
}

func (c *Cache) Execute() {
	c.allocFrame()
	draw.Draw(c.frame, c.frame.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)
	if c.cached == nil {
		return
	}

	sq := c.Square()
	dst := c.frame.SubImage(sq).(*image.RGBA)
	src := c.cached
	res := src.Bounds().Dx()

	if c.offset == 0 && c.scale == 1 && sq.Dx() == res && src.Bounds().Dy() == res {
		draw.Copy(dst, sq.Min, src, src.Bounds(), draw.Src, nil)
		return
	}
	if !(c.scale > 0) {
		return
	}
	c.sampler.Transform(dst, c.sourceToFrame(sq, res), src, src.Bounds(), draw.Src, nil)
}

// sourceToFrame builds the matrix mapping cached-image coordinates to frame
// coordinates. A frame point u in [0,1]² of the square (y up) samples the
// cached image at offset + (u-0.5)*scale + 0.5.
func (c *Cache) sourceToFrame(sq image.Rectangle, res int) f64.Aff3 {
	r := float64(res)
	k := r * c.scale / float64(sq.Dx())
	bx := r * (real(c.offset) + 0.5 - 0.5*c.scale)
	by := r * (0.5 - imag(c.offset) - 0.5*c.scale)
	return f64.Aff3{
		1 / k, 0, float64(sq.Min.X) - bx/k,
		0, 1 / k, float64(sq.Min.Y) - by/k,
	}
}

// RGB writes the frame as tightly packed RGB bytes, growing dst if needed.
func RGB(img *image.RGBA, dst []byte) []byte {
	b := img.Bounds()
	n := b.Dx() * b.Dy() * 3
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	k := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			dst[k], dst[k+1], dst[k+2] = row[4*x], row[4*x+1], row[4*x+2]
			k += 3
		}
	}
	return dst
}
