// Package dicomcore parses uploaded DICOM files into normalized image
// records. It owns the per-file metadata model and the extraction rules;
// series grouping and display logic build on top of it.
package dicomcore

import (
	"strings"

	"github.com/mleroi/dicomstack/internal/resource"
)

// Geometry and interpretation defaults applied when source tags are
// missing. Downstream code never sees an unset geometry.
const (
	DefaultRows          = 512
	DefaultColumns       = 512
	DefaultBitsAllocated = 16
	DefaultModality      = "OT"
	DefaultText          = "Unknown"
	DefaultPhotometric   = "MONOCHROME2"
)

// ImageRecord is the normalized metadata of one parsed file. Created once
// during extraction and immutable thereafter; the backing byte buffer is
// referenced through Source and owned by the upload batch's ledger.
type ImageRecord struct {
	// Name is the display name of the source file, used in reports.
	Name string
	// RelPath is the file's path relative to the selection root; the
	// assembler derives folder grouping keys from it.
	RelPath string
	// Source references the raw byte buffer in the batch ledger.
	Source resource.Handle

	StudyUID       string
	SeriesUID      string
	InstanceNumber int
	// SeriesNumber is 0 when the file carries no explicit series number;
	// the assembler substitutes a discovery-order value.
	SeriesNumber int

	Modality          string
	SeriesDescription string
	PatientID         string
	PatientName       string
	StudyDate         string
	SliceLocation     string

	Rows                      int
	Columns                   int
	BitsAllocated             int
	BitsStored                int
	PixelRepresentation       int
	SamplesPerPixel           int
	PhotometricInterpretation string

	// Window values are kept as raw tag strings: they are frequently
	// absent or malformed, and the display resolver owns their parsing.
	WindowCenterRaw string
	WindowWidthRaw  string

	RescaleSlope     float64
	RescaleIntercept float64
}

// IsColor reports whether the photometric interpretation denotes a color
// family rather than monochrome data.
func (r *ImageRecord) IsColor() bool {
	return !strings.HasPrefix(strings.ToUpper(r.PhotometricInterpretation), "MONOCHROME")
}

// AspectRatio returns columns/rows, defaulting to 1 when degenerate.
func (r *ImageRecord) AspectRatio() float64 {
	if r.Rows <= 0 || r.Columns <= 0 {
		return 1
	}
	return float64(r.Columns) / float64(r.Rows)
}

// newRecord returns a record pre-populated with every documented default.
func newRecord(name string) *ImageRecord {
	return &ImageRecord{
		Name:                      name,
		Modality:                  DefaultModality,
		SeriesDescription:         DefaultText,
		PatientID:                 DefaultText,
		PatientName:               DefaultText,
		StudyDate:                 DefaultText,
		SliceLocation:             DefaultText,
		Rows:                      DefaultRows,
		Columns:                   DefaultColumns,
		BitsAllocated:             DefaultBitsAllocated,
		BitsStored:                DefaultBitsAllocated,
		SamplesPerPixel:           1,
		PhotometricInterpretation: DefaultPhotometric,
		RescaleSlope:              1,
		RescaleIntercept:          0,
	}
}
