package viewport

import (
	"context"
	"image"

	"github.com/mleroi/dicomstack/internal/dicomcore"
	"github.com/mleroi/dicomstack/internal/display"
)

// Frame is the outcome of displaying one slice: the rendered raster and
// the window/level the engine resolved for it.
type Frame struct {
	Image       image.Image
	WindowLevel display.WindowLevel
}

// Engine is the rendering backend behind a session. One engine instance
// serves one surface; Destroy invalidates it for good.
type Engine interface {
	// Display decodes one record and renders it as the current frame.
	Display(ctx context.Context, rec *dicomcore.ImageRecord) (Frame, error)

	// Decode returns the windowed raster of one record without changing
	// the current frame. A non-nil wl bypasses window resolution so a
	// user-chosen window reaches the pixels. Used for export.
	Decode(ctx context.Context, rec *dicomcore.ImageRecord, wl *display.WindowLevel) (image.Image, error)

	// Destroy releases the engine's resources. The engine must not be
	// used afterwards.
	Destroy()
}

// EngineFactory creates a fresh engine for a newly attached surface.
type EngineFactory func() (Engine, error)
