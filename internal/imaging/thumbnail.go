package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Thumbnail produces a small square preview of img. Monochrome sources
// are normalized to full contrast first; color sources are copied
// directly. The result is always edge x edge.
func Thumbnail(img image.Image, isColor bool, edge int) *image.RGBA {
	if edge <= 0 {
		edge = 100
	}
	out := image.NewRGBA(image.Rect(0, 0, edge, edge))

	var src image.Image = img
	if !isColor {
		src = NormalizeFullRange(img)
	}
	draw.NearestNeighbor.Scale(out, out.Bounds(), src, src.Bounds(), draw.Src, nil)
	return out
}

// Placeholder builds the deterministic fallback thumbnail used when a
// series' first image cannot be decoded: a solid fill with the modality
// code drawn in the center.
func Placeholder(modality string, edge int) *image.RGBA {
	if edge <= 0 {
		edge = 100
	}
	if modality == "" {
		modality = "OT"
	}

	out := image.NewRGBA(image.Rect(0, 0, edge, edge))
	fill := color.RGBA{R: 38, G: 38, B: 48, A: 255}
	for y := 0; y < edge; y++ {
		for x := 0; x < edge; x++ {
			out.SetRGBA(x, y, fill)
		}
	}

	drawCenteredText(out, modality)
	return out
}
