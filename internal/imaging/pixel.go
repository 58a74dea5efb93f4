// Package imaging implements the raster-side helpers of the viewer:
// pixel statistics, window application, thumbnail generation and the
// metadata overlay used by the export path.
package imaging

import (
	"image"
	"image/color"
	"sort"

	"github.com/mleroi/dicomstack/internal/display"
)

// maxStatsSamples caps the number of pixels sampled for statistics so
// large slices stay cheap. Sampling uses a fixed stride and is therefore
// deterministic.
const maxStatsSamples = 1 << 16

// intensityAt reads one pixel as a scalar intensity. Gray images return
// their stored value; color images return an 8-bit luminance.
func intensityAt(img image.Image, x, y int) float64 {
	switch im := img.(type) {
	case *image.Gray16:
		return float64(im.Gray16At(x, y).Y)
	case *image.Gray:
		return float64(im.GrayAt(x, y).Y)
	default:
		r, g, b, _ := img.At(x, y).RGBA()
		return float64((r+g+b)/3) / 256
	}
}

// Stats computes min/max and the 1st/99th percentiles of the rescaled
// intensities of img.
func Stats(img image.Image, slope, intercept float64) display.PixelStats {
	if slope == 0 {
		slope = 1
	}
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total <= 0 {
		return display.PixelStats{}
	}

	stride := 1
	for total/(stride*stride) > maxStatsSamples {
		stride++
	}

	samples := make([]float64, 0, total/(stride*stride)+1)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			samples = append(samples, intensityAt(img, x, y)*slope+intercept)
		}
	}
	sort.Float64s(samples)

	n := len(samples)
	return display.PixelStats{
		Min: samples[0],
		Max: samples[n-1],
		P01: samples[percentileIndex(n, 0.01)],
		P99: samples[percentileIndex(n, 0.99)],
	}
}

func percentileIndex(n int, p float64) int {
	idx := int(p * float64(n-1))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// ApplyWindow maps img through the rescale and window transform into an
// 8-bit grayscale raster ready for presentation.
func ApplyWindow(img image.Image, wl display.WindowLevel, slope, intercept float64) *image.Gray {
	if slope == 0 {
		slope = 1
	}
	if wl.Width < 1 {
		wl.Width = 1
	}
	lower := wl.Center - wl.Width/2

	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := intensityAt(img, x, y)*slope + intercept
			scaled := (v - lower) / wl.Width * 255
			if scaled < 0 {
				scaled = 0
			} else if scaled > 255 {
				scaled = 255
			}
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(scaled)})
		}
	}
	return out
}

// NormalizeFullRange linearly rescales a monochrome image from its
// observed min/max to the full 8-bit range. Flat images map to mid-gray.
func NormalizeFullRange(img image.Image) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	minV := intensityAt(img, bounds.Min.X, bounds.Min.Y)
	maxV := minV
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := intensityAt(img, x, y)
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
	}

	span := maxV - minV
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if span == 0 {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 128})
				continue
			}
			v := (intensityAt(img, x, y) - minV) / span * 255
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(v)})
		}
	}
	return out
}
