// Package driver orchestrates rewriting across files: enumeration, the
// worker pool, write-back, and the result cache.
package driver

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ListFiles returns the sorted list of files under root whose extension
// matches one of exts (case-insensitive). Extension filtering lives here;
// the rewrite engine never sees paths it should not touch.
func ListFiles(root string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && matchesExt(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sorted for deterministic report order.
	sort.Strings(files)
	return files, nil
}

func matchesExt(path string, exts []string) bool {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
