package compress

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/acm19/yasuo/internal/logger"
	"github.com/gabriel-vasile/mimetype"
)

// Source provides the raw content of an input. Open is called once per batch run.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads content from a path on disk.
type FileSource string

// Open opens the file for reading.
func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(s))
}

// BytesSource serves content already held in memory.
type BytesSource []byte

// Open returns a reader over the bytes.
func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s)), nil
}

// NewBytesInput builds an Input for an in-memory payload.
func NewBytesInput(name string, data []byte) Input {
	return Input{Name: name, Size: int64(len(data)), Source: BytesSource(data)}
}

// IsImage reports whether data sniffs as an image/* media type.
func IsImage(data []byte) bool {
	return isImageMIME(mimetype.Detect(data))
}

func isImageMIME(m *mimetype.MIME) bool {
	return strings.HasPrefix(m.String(), "image/")
}

// Loader defines the interface for turning paths into queue inputs
type Loader interface {
	// Load returns an Input for every image found under paths, in walk order.
	// Directories are walked recursively; non-image content is skipped.
	Load(paths []string) ([]Input, error)
}

// fileLoader implements the Loader interface
type fileLoader struct {
	walk   func(root string, fn filepath.WalkFunc) error
	detect func(path string) (*mimetype.MIME, error)
}

// NewLoader creates a new Loader instance
func NewLoader() Loader {
	return &fileLoader{
		walk:   filepath.Walk,
		detect: mimetype.DetectFile,
	}
}

// Load walks each path and keeps files whose content is an image
func (l *fileLoader) Load(paths []string) ([]Input, error) {
	var inputs []Input
	for _, root := range paths {
		err := l.walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				// Only a missing or unreadable root fails the load
				if path == root {
					return err
				}
				logger.Error("Skipping unreadable path", "path", path, "error", err)
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Skip dot files and dot directories below the root
			if path != root && strings.HasPrefix(info.Name(), ".") {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if info.IsDir() || !info.Mode().IsRegular() {
				return nil
			}

			if in, ok := l.loadFile(path, info); ok {
				inputs = append(inputs, in)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", root, err)
		}
	}
	return inputs, nil
}

// loadFile reports false for files that are empty, unreadable or not images
func (l *fileLoader) loadFile(path string, info os.FileInfo) (Input, bool) {
	if info.Size() == 0 {
		logger.Debug("Skipping empty file", "path", path)
		return Input{}, false
	}

	m, err := l.detect(path)
	if err != nil {
		logger.Error("Skipping unreadable file", "path", path, "error", readError(err))
		return Input{}, false
	}
	if !isImageMIME(m) {
		logger.Debug("Skipping non-image file", "path", path, "mime", m.String())
		return Input{}, false
	}

	logger.Debug("Discovered image", "path", path, "mime", m.String(), "bytes", info.Size())
	return Input{
		Name:   info.Name(),
		Size:   info.Size(),
		Source: FileSource(path),
	}, true
}
