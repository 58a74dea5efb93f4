// Package upload reads a user-selected file or folder from disk into an
// upload batch, classifying the selection shape from its layout.
package upload

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mleroi/dicomstack/internal/series"
)

// ReadPath loads path (a file or a folder) into batch files. Hidden files
// and DICOMDIR indexes are skipped; paths are recorded relative to the
// selection root so the assembler can derive folder keys.
func ReadPath(path string) ([]series.File, series.UploadShape, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, series.SingleFile, err
	}

	if !stat.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, series.SingleFile, err
		}
		name := filepath.Base(path)
		return []series.File{{Name: name, Path: name, Data: data}}, series.SingleFile, nil
	}

	var files []series.File
	root := filepath.Clean(path)
	base := filepath.Base(root)
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if strings.EqualFold(d.Name(), "DICOMDIR") {
			return nil
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		files = append(files, series.File{
			Name: d.Name(),
			Path: filepath.ToSlash(filepath.Join(base, rel)),
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, series.SingleFile, err
	}
	if len(files) == 0 {
		return nil, series.SingleFile, fmt.Errorf("no files found under %s", path)
	}
	return files, series.DetectFolderShape(files), nil
}
