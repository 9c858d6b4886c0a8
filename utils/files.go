package utils

import (
	"os"
	"path/filepath"

	"github.com/aukilabs/go-tooling/pkg/errors"
)

// writeFile creates the parent directory and writes data.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New("creating output directory failed").
				WithTag("dir", dir).
				Wrap(err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("writing file failed").
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}
