// Package dicomtest synthesizes small DICOM files in memory so tests can
// exercise the real parser instead of mocks.
package dicomtest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Spec describes one synthetic image. Zero values fall back to a small,
// fully tagged CT-like file.
type Spec struct {
	PatientID         string
	PatientName       string
	StudyUID          string
	SeriesUID         string
	Modality          string
	SeriesDescription string
	StudyDate         string

	SeriesNumber   int
	InstanceNumber int

	Rows    int
	Columns int

	// Raw DS strings; empty means the tag is omitted entirely.
	WindowCenter     string
	WindowWidth      string
	RescaleSlope     string
	RescaleIntercept string

	// Fill computes the pixel at (x, y); nil yields a horizontal ramp.
	Fill func(x, y int) uint16

	// OmitPixelData writes a metadata-only file.
	OmitPixelData bool
}

func (s *Spec) applyDefaults() {
	if s.PatientID == "" {
		s.PatientID = "PID000001"
	}
	if s.PatientName == "" {
		s.PatientName = "DOE^JANE"
	}
	if s.StudyUID == "" {
		s.StudyUID = "1.2.840.99999.1"
	}
	if s.SeriesUID == "" {
		s.SeriesUID = "1.2.840.99999.1.1"
	}
	if s.Modality == "" {
		s.Modality = "CT"
	}
	if s.SeriesDescription == "" {
		s.SeriesDescription = "AX TEST"
	}
	if s.StudyDate == "" {
		s.StudyDate = "20240102"
	}
	if s.Rows == 0 {
		s.Rows = 16
	}
	if s.Columns == 0 {
		s.Columns = 16
	}
	if s.Fill == nil {
		cols := s.Columns
		s.Fill = func(x, y int) uint16 {
			return uint16((y*cols + x) % 4096)
		}
	}
}

// mustNewElement creates a DICOM element, panicking on error. Fixture
// construction failing is a test bug, not a runtime condition.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// Encode writes the synthetic file and returns its bytes.
func Encode(spec Spec) ([]byte, error) {
	spec.applyDefaults()

	sopInstanceUID := fmt.Sprintf("%s.%d", spec.SeriesUID, spec.InstanceNumber+1)

	elements := []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		mustNewElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.2"}),
		mustNewElement(tag.SOPInstanceUID, []string{sopInstanceUID}),
		mustNewElement(tag.PatientID, []string{spec.PatientID}),
		mustNewElement(tag.PatientName, []string{spec.PatientName}),
		mustNewElement(tag.StudyInstanceUID, []string{spec.StudyUID}),
		mustNewElement(tag.StudyDate, []string{spec.StudyDate}),
		mustNewElement(tag.SeriesInstanceUID, []string{spec.SeriesUID}),
		mustNewElement(tag.SeriesDescription, []string{spec.SeriesDescription}),
		mustNewElement(tag.Modality, []string{spec.Modality}),
		mustNewElement(tag.Rows, []int{spec.Rows}),
		mustNewElement(tag.Columns, []int{spec.Columns}),
		mustNewElement(tag.BitsAllocated, []int{16}),
		mustNewElement(tag.BitsStored, []int{16}),
		mustNewElement(tag.HighBit, []int{15}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
	}

	if spec.InstanceNumber > 0 {
		elements = append(elements, mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", spec.InstanceNumber)}))
	}
	if spec.SeriesNumber > 0 {
		elements = append(elements, mustNewElement(tag.SeriesNumber, []string{fmt.Sprintf("%d", spec.SeriesNumber)}))
	}
	if spec.WindowCenter != "" {
		elements = append(elements, mustNewElement(tag.WindowCenter, []string{spec.WindowCenter}))
	}
	if spec.WindowWidth != "" {
		elements = append(elements, mustNewElement(tag.WindowWidth, []string{spec.WindowWidth}))
	}
	if spec.RescaleSlope != "" {
		elements = append(elements, mustNewElement(tag.RescaleSlope, []string{spec.RescaleSlope}))
	}
	if spec.RescaleIntercept != "" {
		elements = append(elements, mustNewElement(tag.RescaleIntercept, []string{spec.RescaleIntercept}))
	}

	if !spec.OmitPixelData {
		pixelsPerFrame := spec.Rows * spec.Columns
		nativeFrame := frame.NewNativeFrame[uint16](16, spec.Rows, spec.Columns, pixelsPerFrame, 1)
		for y := 0; y < spec.Rows; y++ {
			for x := 0; x < spec.Columns; x++ {
				nativeFrame.RawData[y*spec.Columns+x] = spec.Fill(x, y)
			}
		}
		pixelDataInfo := dicom.PixelDataInfo{
			Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
		}
		elements = append(elements, mustNewElement(tag.PixelData, pixelDataInfo))
	}

	var buf bytes.Buffer
	if err := dicom.Write(&buf, dicom.Dataset{Elements: elements}); err != nil {
		return nil, fmt.Errorf("write fixture: %w", err)
	}
	return buf.Bytes(), nil
}

// MustEncode is Encode for tests, failing the test on error.
func MustEncode(tb testing.TB, spec Spec) []byte {
	tb.Helper()
	data, err := Encode(spec)
	if err != nil {
		tb.Fatalf("encode fixture: %v", err)
	}
	return data
}

// WriteFile encodes the spec and writes it under dir, creating parent
// directories as needed. Returns the full path.
func WriteFile(dir, name string, spec Spec) (string, error) {
	data, err := Encode(spec)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
