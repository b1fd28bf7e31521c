package pipeline

import (
	"os"
	"path/filepath"
	"strings"
)

// CollectFiles walks root and returns every regular file as a forward-slash
// path relative to root, in walk order. Hidden directories are skipped.
func CollectFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			base := filepath.Base(rel)
			if strings.HasPrefix(base, ".") && base != "." {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		files = append(files, filepath.ToSlash(rel))
		return nil
	})

	return files, err
}
