package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hookclip/internal/fileutil"
)

// SaveResult writes the clip into dir and returns its path.
func SaveResult(dir string, res *Result) (string, error) {
	if res == nil || len(res.Data) == 0 {
		return "", errors.New("save result: no clip data")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, res.Filename)
	if err := fileutil.WriteFileAtomic(path, res.Data, 0o644); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return path, nil
}
