package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes the generated files into outputDir, creating it when
// missing. Files whose content did not change are left untouched so their
// modification time survives a no-op regeneration. It returns the paths
// actually written.
func WriteFiles(files []GeneratedFile, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	for _, file := range files {
		target := filepath.Join(outputDir, file.Filename)

		if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, file.Content) {
			continue
		}

		if err := os.WriteFile(target, file.Content, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", file.Filename, err)
		}

		written = append(written, target)
	}

	return written, nil
}
