package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Corner indexes into an overlay's four text blocks.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// CornerText holds the lines drawn in each corner of an exported frame.
type CornerText [4][]string

const (
	overlayPadding = 6
	lineHeight     = 14
)

// DrawCornerText burns the four text blocks into img, white on a black
// outline so the text stays readable over any pixel content.
func DrawCornerText(img *image.RGBA, text CornerText) {
	bounds := img.Bounds()
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()

	for corner := TopLeft; corner <= BottomRight; corner++ {
		lines := text[corner]
		for i, line := range lines {
			if line == "" {
				continue
			}
			width := font.MeasureString(face, line).Ceil()

			var x, y int
			switch corner {
			case TopLeft:
				x = bounds.Min.X + overlayPadding
				y = bounds.Min.Y + overlayPadding + ascent + i*lineHeight
			case TopRight:
				x = bounds.Max.X - overlayPadding - width
				y = bounds.Min.Y + overlayPadding + ascent + i*lineHeight
			case BottomLeft:
				x = bounds.Min.X + overlayPadding
				y = bounds.Max.Y - overlayPadding - (len(lines)-1-i)*lineHeight
			case BottomRight:
				x = bounds.Max.X - overlayPadding - width
				y = bounds.Max.Y - overlayPadding - (len(lines)-1-i)*lineHeight
			}
			drawOutlinedString(img, face, x, y, line)
		}
	}
}

// drawOutlinedString draws one line of white text with a 1px black
// outline at the given baseline position.
func drawOutlinedString(img *image.RGBA, face font.Face, x, y int, text string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawer.Dot = fixed.P(x+dx, y+dy)
			drawer.DrawString(text)
		}
	}
	drawer.Src = image.NewUniform(color.White)
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
}

// drawCenteredText draws one outlined line centered in img.
func drawCenteredText(img *image.RGBA, text string) {
	bounds := img.Bounds()
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	x := bounds.Min.X + (bounds.Dx()-width)/2
	y := bounds.Min.Y + bounds.Dy()/2 + face.Metrics().Ascent.Ceil()/2
	drawOutlinedString(img, face, x, y, text)
}
