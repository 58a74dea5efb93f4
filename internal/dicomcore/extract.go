package dicomcore

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mleroi/dicomstack/internal/util"
)

// ParseError marks a file that could not be read as DICOM. The caller
// skips the file and continues with the rest of the batch.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract parses one uploaded file's bytes into a normalized ImageRecord.
// Every missing optional tag is replaced by its documented default; a
// malformed or non-DICOM buffer yields a *ParseError. Extract is a pure
// function over the byte buffer and never panics.
func Extract(name string, data []byte) (*ImageRecord, error) {
	ds, err := parseDataset(data)
	if err != nil {
		// A corrupt trailing element can still leave a usable tag
		// dictionary; retry element by element before giving up.
		ds, err = parseTolerant(data)
		if err != nil {
			return nil, &ParseError{Name: name, Err: err}
		}
	}

	rec := newRecord(name)
	for _, t := range textTags {
		if v, ok := stringValue(ds, t.tag); ok {
			t.assign(rec, v)
		}
	}
	for _, t := range intTags {
		if v, ok := intValue(ds, t.tag); ok {
			t.assign(rec, v)
		}
	}
	for _, t := range floatTags {
		if v, ok := floatValue(ds, t.tag); ok {
			t.assign(rec, v)
		}
	}
	return rec, nil
}

// parseDataset runs a strict parse of the tag dictionary, skipping pixel
// data. Panics inside the parser are converted to errors so that one
// hostile file cannot take down the batch.
func parseDataset(data []byte) (ds dicom.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	return dicom.Parse(bytes.NewReader(data), int64(len(data)), nil, dicom.SkipPixelData())
}

// parseTolerant reads elements one at a time and keeps everything parsed
// before the first failure.
func parseTolerant(data []byte) (ds dicom.Dataset, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	p, err := dicom.NewParser(bytes.NewReader(data), int64(len(data)), nil, dicom.SkipPixelData())
	if err != nil {
		return dicom.Dataset{}, err
	}

	var elements []*dicom.Element
	for {
		elem, nextErr := p.Next()
		if nextErr != nil {
			break
		}
		elements = append(elements, elem)
	}
	if len(elements) == 0 {
		return dicom.Dataset{}, fmt.Errorf("no readable elements")
	}

	meta := p.GetMetadata()
	return dicom.Dataset{Elements: append(meta.Elements, elements...)}, nil
}

// stringValue extracts the first string value of a tag, trimmed of DICOM
// padding. Multi-valued tags (e.g. multi-window WindowCenter) yield their
// first entry.
func stringValue(ds dicom.Dataset, t tag.Tag) (string, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil {
		return "", false
	}
	switch v := elem.Value.GetValue().(type) {
	case []string:
		if len(v) == 0 {
			return "", false
		}
		s := util.TrimDICOMString(v[0])
		if s == "" {
			return "", false
		}
		return s, true
	case []int:
		if len(v) == 0 {
			return "", false
		}
		return strconv.Itoa(v[0]), true
	default:
		return "", false
	}
}

// intValue extracts the first integer value of a tag, accepting both
// binary integer VRs and IS strings.
func intValue(ds dicom.Dataset, t tag.Tag) (int, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil {
		return 0, false
	}
	switch v := elem.Value.GetValue().(type) {
	case []int:
		if len(v) == 0 {
			return 0, false
		}
		return v[0], true
	case []string:
		if len(v) == 0 {
			return 0, false
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(util.TrimDICOMString(v[0])))
		if convErr != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// floatValue extracts the first decimal value of a tag.
func floatValue(ds dicom.Dataset, t tag.Tag) (float64, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil {
		return 0, false
	}
	switch v := elem.Value.GetValue().(type) {
	case []string:
		if len(v) == 0 {
			return 0, false
		}
		f, convErr := strconv.ParseFloat(strings.TrimSpace(util.TrimDICOMString(v[0])), 64)
		if convErr != nil {
			return 0, false
		}
		return f, true
	case []float64:
		if len(v) == 0 {
			return 0, false
		}
		return v[0], true
	case []int:
		if len(v) == 0 {
			return 0, false
		}
		return float64(v[0]), true
	default:
		return 0, false
	}
}
