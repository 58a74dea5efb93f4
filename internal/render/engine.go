// Package render implements the rendering engine behind a viewport
// session: it decodes pixel data from the batch ledger, resolves the
// display window and produces presentable rasters.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mleroi/dicomstack/internal/dicomcore"
	"github.com/mleroi/dicomstack/internal/display"
	"github.com/mleroi/dicomstack/internal/imaging"
	"github.com/mleroi/dicomstack/internal/resource"
	"github.com/mleroi/dicomstack/internal/viewport"
)

// ErrDestroyed is returned by any call on an engine after Destroy.
var ErrDestroyed = errors.New("rendering engine destroyed")

// Engine decodes slices from the ledger's raw buffers. Decoded rasters
// are cached per source handle so scrolling back through a stack does
// not re-parse files.
type Engine struct {
	ledger *resource.Ledger
	logger zerolog.Logger

	mu        sync.Mutex
	cache     map[resource.Handle]image.Image
	current   image.Image
	destroyed bool
}

// NewEngine creates an engine over the given batch ledger.
func NewEngine(ledger *resource.Ledger, logger zerolog.Logger) *Engine {
	return &Engine{
		ledger: ledger,
		logger: logger,
		cache:  make(map[resource.Handle]image.Image),
	}
}

// Display decodes rec, resolves its window and makes the windowed raster
// the engine's current frame.
func (e *Engine) Display(ctx context.Context, rec *dicomcore.ImageRecord) (viewport.Frame, error) {
	raster, wl, err := e.render(ctx, rec, nil)
	if err != nil {
		return viewport.Frame{}, err
	}
	e.mu.Lock()
	e.current = raster
	e.mu.Unlock()
	return viewport.Frame{Image: raster, WindowLevel: wl}, nil
}

// Decode returns the windowed raster of rec without touching the current
// frame. A non-nil wl overrides window resolution entirely.
func (e *Engine) Decode(ctx context.Context, rec *dicomcore.ImageRecord, wl *display.WindowLevel) (image.Image, error) {
	raster, _, err := e.render(ctx, rec, wl)
	return raster, err
}

// Current returns the last displayed raster, or nil.
func (e *Engine) Current() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Destroy drops the decode cache and invalidates the engine.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = nil
	e.current = nil
	e.destroyed = true
}

func (e *Engine) render(ctx context.Context, rec *dicomcore.ImageRecord, override *display.WindowLevel) (image.Image, display.WindowLevel, error) {
	raw, err := e.raw(ctx, rec)
	if err != nil {
		return nil, display.WindowLevel{}, err
	}

	if rec.IsColor() {
		// Color data carries its own presentation; no window applied.
		return raw, display.WindowLevel{}, nil
	}

	if override != nil {
		return imaging.ApplyWindow(raw, *override, rec.RescaleSlope, rec.RescaleIntercept), *override, nil
	}
	stats := imaging.Stats(raw, rec.RescaleSlope, rec.RescaleIntercept)
	wl := display.Resolve(rec, &stats)
	return imaging.ApplyWindow(raw, wl, rec.RescaleSlope, rec.RescaleIntercept), wl, nil
}

// raw returns the decoded, unwindowed raster of rec, from cache when
// possible.
func (e *Engine) raw(ctx context.Context, rec *dicomcore.ImageRecord) (image.Image, error) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return nil, ErrDestroyed
	}
	if img, ok := e.cache[rec.Source]; ok {
		e.mu.Unlock()
		return img, nil
	}
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, ok := e.ledger.Bytes(rec.Source)
	if !ok {
		return nil, fmt.Errorf("no source buffer for %s", rec.Name)
	}

	img, err := decodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return nil, ErrDestroyed
	}
	e.cache[rec.Source] = img
	return img, nil
}

// decodeFrame parses a full dataset and converts its first pixel frame
// to an image. Parser panics on hostile buffers become errors.
func decodeFrame(data []byte) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, err
	}

	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data: %w", err)
	}
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, fmt.Errorf("unexpected pixel data representation")
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("pixel data has no frames")
	}
	return info.Frames[0].GetImage()
}
