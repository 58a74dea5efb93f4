package series

import (
	"fmt"
	"image"
	"path"
	"sort"

	"github.com/mleroi/dicomstack/internal/dicomcore"
)

// Series is one display grouping: an ordered, non-empty stack of image
// records plus an optional thumbnail attached after assembly.
type Series struct {
	// Key is the stable identifier: folder name, filename or synthetic
	// per-file key depending on the upload shape.
	Key string
	// Number orders series for display; synthetic discovery order when
	// the records carry no explicit series number.
	Number      int
	Modality    string
	Description string
	Images      []*dicomcore.ImageRecord

	thumbnail image.Image
}

// AttachThumbnail sets the series thumbnail. Only the first attachment
// takes effect; later calls report false.
func (s *Series) AttachThumbnail(img image.Image) bool {
	if s.thumbnail != nil || img == nil {
		return false
	}
	s.thumbnail = img
	return true
}

// Thumbnail returns the attached thumbnail, or nil.
func (s *Series) Thumbnail() image.Image { return s.thumbnail }

// Len returns the number of images in the series.
func (s *Series) Len() int { return len(s.Images) }

// Assemble groups records into series according to the upload shape.
// Grouping is a pure function of the records and shape: repeated runs
// produce identical keys and ordering. The result is ordered by series
// number and never contains an empty series.
func Assemble(records []*dicomcore.ImageRecord, shape UploadShape) []*Series {
	if len(records) == 0 {
		return nil
	}

	var groups []*Series
	switch shape {
	case SingleFile, MultipleFiles:
		groups = groupPerFile(records)
	case SeriesFolder:
		groups = groupSingle(records)
	case StudyFolder:
		groups = groupByParent(records)
	default:
		groups = groupSingle(records)
	}

	for i, g := range groups {
		// Discovery order is the synthetic series number; an explicit
		// number on the records takes precedence for cross-group order.
		g.Number = i + 1
		for _, rec := range g.Images {
			if rec.SeriesNumber > 0 {
				g.Number = rec.SeriesNumber
				break
			}
		}
		g.Modality = g.Images[0].Modality
		g.Description = g.Images[0].SeriesDescription

		sort.SliceStable(g.Images, func(a, b int) bool {
			return g.Images[a].InstanceNumber < g.Images[b].InstanceNumber
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Number < groups[b].Number
	})
	return groups
}

// groupPerFile makes every record its own series, keyed by filename with
// an index suffix on collisions.
func groupPerFile(records []*dicomcore.ImageRecord) []*Series {
	seen := make(map[string]int)
	groups := make([]*Series, 0, len(records))
	for _, rec := range records {
		key := rec.Name
		if key == "" {
			key = path.Base(rec.RelPath)
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		groups = append(groups, &Series{
			Key:    key,
			Images: []*dicomcore.ImageRecord{rec},
		})
	}
	return groups
}

// groupSingle puts every record in one series keyed by the shared parent
// folder name.
func groupSingle(records []*dicomcore.ImageRecord) []*Series {
	key := ""
	for _, rec := range records {
		if p := parentDir(rec.RelPath); p != "" {
			key = p
			break
		}
	}
	if key == "" {
		key = "series"
	}
	return []*Series{{Key: key, Images: records}}
}

// groupByParent groups records by their immediate parent folder. A batch
// with a single parent and no deep nesting collapses to one series.
func groupByParent(records []*dicomcore.ImageRecord) []*Series {
	parents := make(map[string]struct{})
	maxDepth := 0
	for _, rec := range records {
		parents[parentDir(rec.RelPath)] = struct{}{}
		if d := pathDepth(rec.RelPath); d > maxDepth {
			maxDepth = d
		}
	}
	if len(parents) <= 1 && maxDepth <= 2 {
		return groupSingle(records)
	}

	index := make(map[string]*Series)
	var groups []*Series
	for _, rec := range records {
		key := parentDir(rec.RelPath)
		if key == "" {
			key = "series"
		}
		g, ok := index[key]
		if !ok {
			g = &Series{Key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.Images = append(g.Images, rec)
	}
	return groups
}
