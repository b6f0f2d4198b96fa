package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// UnformattedSuffix replaces ".go" in the name of the sidecar file holding
// output that go/format rejected.
const UnformattedSuffix = ".unformatted.go"

// writeDebugUnformatted writes rejected output next to the intended target.
// Failing to write it must not hide the formatting error.
func writeDebugUnformatted(outDir, filename string, content []byte) error {
	if outDir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return err
	}

	debugName := strings.TrimSuffix(filename, ".go") + UnformattedSuffix

	return os.WriteFile(filepath.Join(outDir, debugName), content, filePerm)
}
