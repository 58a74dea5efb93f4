// Package export renders the currently displayed slice to an annotated
// PNG: the windowed raster with patient, study and view parameters
// burned into the four corners.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/mleroi/dicomstack/internal/dicomcore"
	"github.com/mleroi/dicomstack/internal/display"
	"github.com/mleroi/dicomstack/internal/imaging"
	"github.com/mleroi/dicomstack/internal/series"
	"github.com/mleroi/dicomstack/internal/util"
	"github.com/mleroi/dicomstack/internal/viewport"
)

// NothingToExportError reports an export request with no displayed slice.
type NothingToExportError struct{}

func (e *NothingToExportError) Error() string {
	return "nothing to export: no slice is displayed"
}

// Filename builds the export filename for one slice. Every metadata token
// is reduced to alphanumerics and underscores; the slice number is
// 1-based.
func Filename(rec *dicomcore.ImageRecord, slice int) string {
	return fmt.Sprintf("%s_%s_%d.png",
		util.SanitizeToken(rec.PatientID),
		util.SanitizeToken(rec.SeriesDescription),
		slice+1,
	)
}

// Snapshot renders the slice at index of sr through the engine and
// returns the encoded PNG plus its suggested filename.
func Snapshot(ctx context.Context, eng viewport.Engine, sr *series.Series, index int, view viewport.View) ([]byte, string, error) {
	if eng == nil || sr == nil || index < 0 || index >= sr.Len() {
		return nil, "", &NothingToExportError{}
	}
	rec := sr.Images[index]

	// The exported pixels carry the view's window, not a re-resolved
	// one, so a chosen preset shows up in the raster and not just in
	// the burned-in text.
	var override *display.WindowLevel
	if view.WindowLevel.Width > 0 {
		wl := view.WindowLevel
		override = &wl
	}
	raster, err := eng.Decode(ctx, rec, override)
	if err != nil {
		return nil, "", fmt.Errorf("decode slice for export: %w", err)
	}

	out := toRGBA(raster)
	imaging.DrawCornerText(out, annotations(rec, sr, index, view))

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, "", fmt.Errorf("encode export png: %w", err)
	}
	return buf.Bytes(), Filename(rec, index), nil
}

// annotations assembles the four corner blocks: identity top-left, study
// context top-right, position bottom-left, view parameters bottom-right.
func annotations(rec *dicomcore.ImageRecord, sr *series.Series, index int, view viewport.View) imaging.CornerText {
	var text imaging.CornerText
	text[imaging.TopLeft] = []string{
		rec.PatientName,
		rec.PatientID,
	}
	text[imaging.TopRight] = []string{
		rec.StudyDate,
		rec.Modality,
	}
	text[imaging.BottomLeft] = []string{
		rec.SeriesDescription,
		fmt.Sprintf("Slice %d/%d", index+1, sr.Len()),
	}
	text[imaging.BottomRight] = []string{
		fmt.Sprintf("C: %.0f W: %.0f", view.WindowLevel.Center, view.WindowLevel.Width),
		fmt.Sprintf("Zoom: %.0f%%", view.Zoom),
	}
	return text
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
