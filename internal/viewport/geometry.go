package viewport

// Zoom bounds and step, in percent.
const (
	MinZoom  = 10
	MaxZoom  = 800
	zoomStep = 25
)

// Rect is a placement rectangle on the display surface, in pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// FitRect centers an image of the given aspect ratio inside a surface,
// scaled to the requested occupancy. A degenerate surface or aspect
// yields the zero rect.
func FitRect(aspect float64, surfaceW, surfaceH int, occupancy float64) Rect {
	if aspect <= 0 || surfaceW <= 0 || surfaceH <= 0 {
		return Rect{}
	}
	if occupancy <= 0 || occupancy > 1 {
		occupancy = 1
	}
	availW := float64(surfaceW) * occupancy
	availH := float64(surfaceH) * occupancy

	w := availW
	h := w / aspect
	if h > availH {
		h = availH
		w = h * aspect
	}
	return Rect{
		X:      (float64(surfaceW) - w) / 2,
		Y:      (float64(surfaceH) - h) / 2,
		Width:  w,
		Height: h,
	}
}

// StepZoom moves a zoom percentage by whole steps and clamps it to the
// supported range.
func StepZoom(current float64, steps int) float64 {
	return ClampZoom(current + float64(steps)*zoomStep)
}

// ClampZoom bounds a zoom percentage to the supported range.
func ClampZoom(zoom float64) float64 {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
