// Package display derives window/level parameters for an image from its
// metadata, modality defaults and, as a last resort, decoded pixel
// statistics. The resolver always returns a finite center and a width of
// at least 1 so the renderer never sees NaN or a degenerate window.
package display

import (
	"math"
	"strconv"
	"strings"

	"github.com/mleroi/dicomstack/internal/dicomcore"
)

// WindowLevel is the intensity window mapped to the display range.
type WindowLevel struct {
	Center float64
	Width  float64
}

// PixelStats summarizes a decoded pixel buffer after rescale.
type PixelStats struct {
	Min float64
	Max float64
	P01 float64
	P99 float64
}

// Modality defaults used when a record carries no usable window tags.
// The CT default of 0/400 mirrors the observed viewer behavior; the
// clinical abdomen preset (40/400) is available explicitly via Presets.
var modalityDefaults = map[string]WindowLevel{
	"CT": {Center: 0, Width: 400},
	"MR": {Center: 500, Width: 1000},
}

// Resolve computes the window/level to use when displaying rec. stats may
// be nil when no decoded buffer is available.
func Resolve(rec *dicomcore.ImageRecord, stats *PixelStats) WindowLevel {
	if wl, ok := fromMetadata(rec); ok {
		return clamp(wl, stats)
	}
	if wl, ok := modalityDefaults[strings.ToUpper(rec.Modality)]; ok {
		return clamp(wl, stats)
	}
	if stats != nil {
		return clamp(fromStats(*stats), stats)
	}
	return clamp(bitDepthDefault(rec), stats)
}

// fromMetadata uses the record's own window tags when both parse to
// usable numbers.
func fromMetadata(rec *dicomcore.ImageRecord) (WindowLevel, bool) {
	if rec.WindowCenterRaw == "" || rec.WindowWidthRaw == "" {
		return WindowLevel{}, false
	}
	center, err := parseDS(rec.WindowCenterRaw)
	if err != nil {
		return WindowLevel{}, false
	}
	width, err := parseDS(rec.WindowWidthRaw)
	if err != nil {
		return WindowLevel{}, false
	}
	if !isFinite(center) || !isFinite(width) || width <= 0 {
		return WindowLevel{}, false
	}
	return WindowLevel{Center: center, Width: width}, true
}

// bitDepthDefault is the fallback table for modalities without their own
// entry: full 12-bit window for 16-bit monochrome data, byte range
// otherwise (including color interpretations).
func bitDepthDefault(rec *dicomcore.ImageRecord) WindowLevel {
	if !rec.IsColor() && rec.BitsAllocated == 16 {
		return WindowLevel{Center: 2048, Width: 4096}
	}
	return WindowLevel{Center: 128, Width: 256}
}

// fromStats computes a percentile window over decoded intensities.
func fromStats(s PixelStats) WindowLevel {
	if s.Max == s.Min {
		return WindowLevel{Center: 500, Width: 1000}
	}
	if s.P99 > s.P01 {
		return WindowLevel{
			Center: (s.P99 + s.P01) / 2,
			Width:  s.P99 - s.P01,
		}
	}
	return WindowLevel{
		Center: (s.Max + s.Min) / 2,
		Width:  s.Max - s.Min,
	}
}

// clamp enforces the output guarantee: finite center, width >= 1.
func clamp(wl WindowLevel, stats *PixelStats) WindowLevel {
	if !isFinite(wl.Width) || wl.Width <= 0 {
		wl.Width = 0
		if stats != nil {
			wl.Width = math.Max(1, stats.Max-stats.Min)
		}
	}
	if wl.Width < 1 {
		wl.Width = 1000
	}
	if !isFinite(wl.Center) {
		wl.Center = 500
	}
	return wl
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// parseDS parses a DICOM decimal string. Multi-valued windows keep their
// first entry.
func parseDS(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return strconv.ParseFloat(s, 64)
}
