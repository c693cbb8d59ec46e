package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteDir writes files under dir, creating directories as needed. Files
// with no contents are skipped.
func WriteDir(dir string, files []File) (int, error) {
	written := 0
	for _, f := range files {
		data, err := f.Contents()
		if err != nil {
			return written, fmt.Errorf("failed to render %s: %w", f.Identity(), err)
		}
		if data == nil {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Identity()))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", f.Identity(), err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written++
	}
	return written, nil
}
