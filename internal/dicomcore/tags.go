package dicomcore

import (
	"github.com/suyashkumar/dicom/pkg/tag"
)

// textTag binds an optional string tag to its record field. Tags listed
// here fall back to the record default when absent or unreadable.
type textTag struct {
	tag    tag.Tag
	assign func(r *ImageRecord, v string)
}

var textTags = []textTag{
	{tag.StudyInstanceUID, func(r *ImageRecord, v string) { r.StudyUID = v }},
	{tag.SeriesInstanceUID, func(r *ImageRecord, v string) { r.SeriesUID = v }},
	{tag.Modality, func(r *ImageRecord, v string) { r.Modality = v }},
	{tag.SeriesDescription, func(r *ImageRecord, v string) { r.SeriesDescription = v }},
	{tag.PatientID, func(r *ImageRecord, v string) { r.PatientID = v }},
	{tag.PatientName, func(r *ImageRecord, v string) { r.PatientName = v }},
	{tag.StudyDate, func(r *ImageRecord, v string) { r.StudyDate = v }},
	{tag.SliceLocation, func(r *ImageRecord, v string) { r.SliceLocation = v }},
	{tag.PhotometricInterpretation, func(r *ImageRecord, v string) { r.PhotometricInterpretation = v }},
	{tag.WindowCenter, func(r *ImageRecord, v string) { r.WindowCenterRaw = v }},
	{tag.WindowWidth, func(r *ImageRecord, v string) { r.WindowWidthRaw = v }},
}

// intTag binds an optional integer tag to its record field. A tag whose
// value cannot be read as an integer keeps the record default.
type intTag struct {
	tag    tag.Tag
	assign func(r *ImageRecord, v int)
}

var intTags = []intTag{
	{tag.InstanceNumber, func(r *ImageRecord, v int) { r.InstanceNumber = v }},
	{tag.SeriesNumber, func(r *ImageRecord, v int) { r.SeriesNumber = v }},
	{tag.Rows, func(r *ImageRecord, v int) {
		if v > 0 {
			r.Rows = v
		}
	}},
	{tag.Columns, func(r *ImageRecord, v int) {
		if v > 0 {
			r.Columns = v
		}
	}},
	{tag.BitsAllocated, func(r *ImageRecord, v int) {
		if v > 0 {
			r.BitsAllocated = v
		}
	}},
	{tag.BitsStored, func(r *ImageRecord, v int) {
		if v > 0 {
			r.BitsStored = v
		}
	}},
	{tag.PixelRepresentation, func(r *ImageRecord, v int) { r.PixelRepresentation = v }},
	{tag.SamplesPerPixel, func(r *ImageRecord, v int) {
		if v > 0 {
			r.SamplesPerPixel = v
		}
	}},
}

// floatTag binds an optional decimal tag to its record field.
type floatTag struct {
	tag    tag.Tag
	assign func(r *ImageRecord, v float64)
}

var floatTags = []floatTag{
	{tag.RescaleSlope, func(r *ImageRecord, v float64) {
		if v != 0 {
			r.RescaleSlope = v
		}
	}},
	{tag.RescaleIntercept, func(r *ImageRecord, v float64) { r.RescaleIntercept = v }},
}
