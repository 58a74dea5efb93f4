// Package util provides small helpers shared across the viewer pipeline.
package util

import "strings"

// SanitizeToken replaces every non-alphanumeric rune with an underscore,
// producing a string safe for use in export filenames.
func SanitizeToken(s string) string {
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// TrimDICOMString removes the padding and bracket artifacts that DICOM
// string values carry when rendered by the tag parser.
func TrimDICOMString(s string) string {
	return strings.Trim(s, " \x00[]")
}

// FirstNonEmpty returns the first non-empty string, or fallback when all
// candidates are empty.
func FirstNonEmpty(fallback string, candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return fallback
}
