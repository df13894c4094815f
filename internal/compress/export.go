package compress

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acm19/yasuo/internal/logger"
)

// Exporter defines the interface for saving a compressed image
type Exporter interface {
	// Export stores c under fileName and returns where it was written.
	Export(ctx context.Context, fileName string, c *Compressed) (string, error)
}

// ExportAll saves every entry holding a result under its OutputFileName, in
// queue order. When two entries map to the same name, later ones get a "-N"
// suffix before the extension. Entries without a result are skipped. It stops
// at the first error.
func ExportAll(ctx context.Context, exporter Exporter, queue *Queue) ([]string, error) {
	var written []string
	taken := make(map[string]bool)
	for _, entry := range queue.Compressed() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		name := claimName(OutputFileName(entry.Name, entry.Compressed.Format), taken)
		location, err := exporter.Export(ctx, name, entry.Compressed)
		if err != nil {
			return written, fmt.Errorf("failed to export %s: %w", entry.Name, err)
		}
		written = append(written, location)
	}
	return written, nil
}

// claimName returns name, or the first free "stem-N.ext" variant of it, and marks it taken.
func claimName(name string, taken map[string]bool) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 1; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	if candidate != name {
		logger.Warn("Output name already used in this export, renaming", "name", name, "renamed", candidate)
	}
	taken[candidate] = true
	return candidate
}

// dirExporter implements the Exporter interface on a local directory
type dirExporter struct {
	dir string
}

// NewDirExporter creates an Exporter writing into dir, creating it if needed
func NewDirExporter(dir string) Exporter {
	return &dirExporter{dir: dir}
}

// Export writes through a temporary file so a partial image never has the final name
func (e *dirExporter) Export(ctx context.Context, fileName string, c *Compressed) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.dir, fileName)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, c.Data, 0644); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	logger.Debug("Wrote compressed image", "path", path, "bytes", c.Size)
	return path, nil
}
