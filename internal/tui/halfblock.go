package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// upperHalf is drawn with the top pixel as foreground and the bottom pixel
// as background, so one cell shows two rows.
const upperHalf = "▀"

// HalfBlock renders img as text, two image rows per line.
func HalfBlock(img *image.RGBA) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			style := lipgloss.NewStyle().Foreground(hexOf(top))
			if y+1 < b.Max.Y {
				style = style.Background(hexOf(img.RGBAAt(x, y+1)))
			}
			sb.WriteString(style.Render(upperHalf))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexOf(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
