package render

import (
	"context"

	"github.com/mleroi/dicomstack/internal/imaging"
	"github.com/mleroi/dicomstack/internal/series"
)

// AttachThumbnails generates one preview per series of a batch from its
// first image. A series whose first image cannot be decoded gets the
// modality placeholder instead; a failed thumbnail never fails the batch.
func AttachThumbnails(ctx context.Context, batch *series.Batch, eng *Engine, edge int) {
	for _, s := range batch.Series {
		if s.Thumbnail() != nil || s.Len() == 0 {
			continue
		}
		rec := s.Images[0]
		raw, err := eng.raw(ctx, rec)
		if err != nil {
			eng.logger.Warn().Str("series", s.Key).Err(err).Msg("thumbnail decode failed, using placeholder")
			s.AttachThumbnail(imaging.Placeholder(s.Modality, edge))
			continue
		}
		s.AttachThumbnail(imaging.Thumbnail(raw, rec.IsColor(), edge))
	}
}
