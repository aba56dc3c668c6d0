package storage

import (
	"os"
	"path/filepath"
)

// FileSizes returns the size in bytes of each existing path, keyed by base name.
// Directories are summed recursively; missing paths are omitted.
func FileSizes(paths ...string) (map[string]int64, error) {
	sizes := make(map[string]int64, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		size := info.Size()
		if info.IsDir() {
			if size, err = treeSize(p); err != nil {
				return nil, err
			}
		}
		sizes[filepath.Base(p)] = size
	}
	return sizes, nil
}

func treeSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
