// Package series groups extracted image records into ordered, displayable
// series according to the shape of the original upload.
package series

import "strings"

// UploadShape describes how the user selected the input files. It is
// determined from the original file/folder selection by the caller and
// never re-derived here.
type UploadShape int

const (
	SingleFile UploadShape = iota
	MultipleFiles
	SeriesFolder
	StudyFolder
)

// String returns a human-readable shape name.
func (s UploadShape) String() string {
	switch s {
	case SingleFile:
		return "single-file"
	case MultipleFiles:
		return "multiple-files"
	case SeriesFolder:
		return "series-folder"
	case StudyFolder:
		return "study-folder"
	default:
		return "unknown"
	}
}

// File is one entry of an upload batch: a display name, the path relative
// to the selection root, and the raw bytes.
type File struct {
	Name string
	Path string
	Data []byte
}

// pathDepth counts the segments of a slash-separated relative path.
func pathDepth(p string) int {
	p = strings.Trim(p, "/")
	if p == "" {
		return 0
	}
	return strings.Count(p, "/") + 1
}

// parentDir returns the immediate parent folder name of a relative path,
// or "" for a top-level file.
func parentDir(p string) string {
	p = strings.Trim(p, "/")
	segments := strings.Split(p, "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[len(segments)-2]
}

// DetectFolderShape classifies a folder upload: several distinct parent
// folders, or any nesting deeper than two segments, makes it a study.
func DetectFolderShape(files []File) UploadShape {
	parents := make(map[string]struct{})
	maxDepth := 0
	for _, f := range files {
		parents[parentDir(f.Path)] = struct{}{}
		if d := pathDepth(f.Path); d > maxDepth {
			maxDepth = d
		}
	}
	if len(parents) > 1 || maxDepth > 2 {
		return StudyFolder
	}
	return SeriesFolder
}
