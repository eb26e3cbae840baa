// Package export writes rendered frames and run summaries to disk.
package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Formats lists the file extensions Encode understands.
var Formats = []string{".png", ".bmp", ".gif", ".jpg", ".jpeg"}

// FormatOf returns the lower-cased extension of path, or an error when it is
// not one of Formats.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range Formats {
		if ext == f {
			return ext, nil
		}
	}
	return "", fmt.Errorf("export: unsupported image format %q", ext)
}

// Encode writes img to w in the given format (an extension from Formats).
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(w, Paletted(img), nil)
	}
	return fmt.Errorf("export: unsupported image format %q", format)
}

// SaveImage writes img to path, choosing the encoder from the extension.
func SaveImage(path string, img image.Image) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	return f.Close()
}

// Paletted converts img to the web-safe palette with Floyd-Steinberg
// dithering, as GIF frames require.
func Paletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.WebSafe)
	draw.FloydSteinberg.Draw(p, b, img, b.Min)
	return p
}
