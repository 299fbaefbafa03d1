package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// fs backs the files this package writes.
var fs = afero.NewOsFs()

// writeAtomically writes content next to path and renames it into place, so
// readers never see a partial file. Parent directories are created.
func writeAtomically(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, ".envinit-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = fs.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	renamed = true
	return nil
}
