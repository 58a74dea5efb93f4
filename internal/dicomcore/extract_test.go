package dicomcore

import (
	"errors"
	"testing"

	"github.com/mleroi/dicomstack/internal/dicomtest"
)

func TestExtract_FullyTaggedFile(t *testing.T) {
	data := dicomtest.MustEncode(t, dicomtest.Spec{
		PatientID:         "PID42",
		PatientName:       "SMITH^ANNA",
		Modality:          "CT",
		SeriesDescription: "AX HEAD",
		StudyDate:         "20231130",
		InstanceNumber:    7,
		SeriesNumber:      3,
		Rows:              32,
		Columns:           24,
		WindowCenter:      "40",
		WindowWidth:       "400",
		RescaleSlope:      "1",
		RescaleIntercept:  "-1024",
	})

	rec, err := Extract("head007.dcm", data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if rec.PatientID != "PID42" || rec.PatientName != "SMITH^ANNA" {
		t.Errorf("patient fields = %q/%q", rec.PatientID, rec.PatientName)
	}
	if rec.Modality != "CT" {
		t.Errorf("Modality = %q, want CT", rec.Modality)
	}
	if rec.InstanceNumber != 7 {
		t.Errorf("InstanceNumber = %d, want 7", rec.InstanceNumber)
	}
	if rec.SeriesNumber != 3 {
		t.Errorf("SeriesNumber = %d, want 3", rec.SeriesNumber)
	}
	if rec.Rows != 32 || rec.Columns != 24 {
		t.Errorf("geometry = %dx%d, want 32x24", rec.Rows, rec.Columns)
	}
	if rec.WindowCenterRaw != "40" || rec.WindowWidthRaw != "400" {
		t.Errorf("window raw = %q/%q", rec.WindowCenterRaw, rec.WindowWidthRaw)
	}
	if rec.RescaleIntercept != -1024 {
		t.Errorf("RescaleIntercept = %v, want -1024", rec.RescaleIntercept)
	}
	if rec.IsColor() {
		t.Error("MONOCHROME2 record reported as color")
	}
}

func TestExtract_DefaultsForMissingTags(t *testing.T) {
	// The zero-valued spec omits instance/series numbers, windowing and
	// rescale tags entirely.
	data := dicomtest.MustEncode(t, dicomtest.Spec{})

	rec, err := Extract("plain.dcm", data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if rec.InstanceNumber != 0 {
		t.Errorf("InstanceNumber = %d, want default 0", rec.InstanceNumber)
	}
	if rec.SeriesNumber != 0 {
		t.Errorf("SeriesNumber = %d, want default 0", rec.SeriesNumber)
	}
	if rec.WindowCenterRaw != "" || rec.WindowWidthRaw != "" {
		t.Errorf("window raw should stay empty, got %q/%q", rec.WindowCenterRaw, rec.WindowWidthRaw)
	}
	if rec.RescaleSlope != 1 || rec.RescaleIntercept != 0 {
		t.Errorf("rescale = %v/%v, want 1/0", rec.RescaleSlope, rec.RescaleIntercept)
	}
	if rec.SliceLocation != DefaultText {
		t.Errorf("SliceLocation = %q, want %q", rec.SliceLocation, DefaultText)
	}
}

func TestExtract_RejectsGarbage(t *testing.T) {
	_, err := Extract("notes.txt", []byte("definitely not a DICOM file"))
	if err == nil {
		t.Fatal("expected a parse error")
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.Name != "notes.txt" {
		t.Errorf("ParseError.Name = %q, want notes.txt", pe.Name)
	}
}

func TestExtract_RejectsEmptyBuffer(t *testing.T) {
	if _, err := Extract("empty.dcm", nil); err == nil {
		t.Fatal("expected a parse error for an empty buffer")
	}
}

func TestExtract_TruncatedFileStillYieldsRecord(t *testing.T) {
	data := dicomtest.MustEncode(t, dicomtest.Spec{
		PatientID:      "PID99",
		Modality:       "MR",
		InstanceNumber: 2,
	})

	// Chop off the tail of the pixel data; the tag dictionary before it
	// remains readable through the tolerant path.
	rec, err := Extract("cut.dcm", data[:len(data)-64])
	if err != nil {
		t.Fatalf("Extract failed on truncated file: %v", err)
	}
	if rec.PatientID != "PID99" {
		t.Errorf("PatientID = %q, want PID99", rec.PatientID)
	}
	if rec.Modality != "MR" {
		t.Errorf("Modality = %q, want MR", rec.Modality)
	}
}
