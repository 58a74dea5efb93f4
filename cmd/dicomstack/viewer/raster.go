package viewer

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
)

// renderRaster draws img as terminal half blocks, two pixel rows per
// text row, fitted into a maxW x maxH cell area. Returns "" when there
// is nothing to draw.
func renderRaster(img image.Image, maxW, maxH int) string {
	if img == nil || maxW < 1 || maxH < 1 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	cols, rows := fitCells(b.Dx(), b.Dy(), maxW, maxH)
	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)

	var out strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := scaled.RGBAAt(x, y*2)
			bottom := scaled.RGBAAt(x, y*2+1)
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top.R, top.G, top.B))).
				Background(lipgloss.Color(hexColor(bottom.R, bottom.G, bottom.B)))
			out.WriteString(cell.Render("▀"))
		}
		if y < rows-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

// fitCells fits the image's aspect ratio into a maxW x (maxH*2) pixel
// grid and returns it as cell columns and rows.
func fitCells(imgW, imgH, maxW, maxH int) (cols, rows int) {
	pw, ph := float64(maxW), float64(maxH*2)
	aspect := float64(imgW) / float64(imgH)
	w := pw
	h := w / aspect
	if h > ph {
		h = ph
		w = h * aspect
	}
	cols = int(w)
	rows = int(h) / 2
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
