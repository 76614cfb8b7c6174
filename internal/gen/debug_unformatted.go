package gen

import (
	"os"
	"path/filepath"

	"github.com/untillpro/goutils/logger"
)

// writeDebugUnformatted writes unformatted code to a sidecar file next to the
// intended output. This is best-effort and should never make generation fail
// harder.
func writeDebugUnformatted(outDir, filename string, content []byte) error {
	if outDir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return err
	}

	// Keep it a .go file so editors can syntax highlight, but avoid colliding
	// with real output.
	p := filepath.Join(outDir, debugName(filename))

	logger.Info("gen: unformatted source of", filename, "written to", p)

	return os.WriteFile(p, content, filePerm)
}
