package compress

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gabriel-vasile/mimetype"
)

func createTestDir(t *testing.T, parentDir, name string) string {
	t.Helper()
	dirPath := filepath.Join(parentDir, name)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dirPath, err)
	}
	return dirPath
}

func createTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", filePath, err)
	}
	return filePath
}

func inputNames(inputs []Input) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, in.Name)
	}
	return out
}

func TestLoader_FiltersNonImages(t *testing.T) {
	tmpDir := t.TempDir()
	png := createPNG(t, 4, 4)

	createTestFile(t, tmpDir, "a.png", png)
	createTestFile(t, tmpDir, "empty.png", nil)
	createTestFile(t, tmpDir, "fake.png", []byte("plain text pretending to be a picture"))
	createTestFile(t, tmpDir, "notes.txt", []byte("hello"))
	subDir := createTestDir(t, tmpDir, "sub")
	createTestFile(t, subDir, "b.jpg", createJPEG(t, 4, 4))
	hiddenDir := createTestDir(t, tmpDir, ".hidden")
	createTestFile(t, hiddenDir, "c.png", png)
	createTestFile(t, tmpDir, ".d.png", png)

	inputs, err := NewLoader().Load([]string{tmpDir})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{"a.png", "b.jpg"}
	if got := inputNames(inputs); !slices.Equal(got, expected) {
		t.Errorf("Expected inputs %v, got %v", expected, got)
	}
	if inputs[0].Size != int64(len(png)) {
		t.Errorf("Expected size %d, got %d", len(png), inputs[0].Size)
	}
}

func TestLoader_SingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	data := createPNG(t, 4, 4)
	path := createTestFile(t, tmpDir, "photo.png", data)

	inputs, err := NewLoader().Load([]string{path})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(inputs) != 1 || inputs[0].Name != "photo.png" {
		t.Fatalf("Expected photo.png, got %v", inputNames(inputs))
	}

	r, err := inputs[0].Source.Open()
	if err != nil {
		t.Fatalf("Failed to open source: %v", err)
	}
	defer r.Close()
	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Failed to read source: %v", err)
	}
	if len(content) != len(data) {
		t.Errorf("Expected %d bytes, got %d", len(data), len(content))
	}
}

func TestLoader_NonexistentPath(t *testing.T) {
	_, err := NewLoader().Load([]string{"/nonexistent/path/photo.png"})
	if err == nil {
		t.Error("Expected error for nonexistent path, got nil")
	}
}

func TestIsImage(t *testing.T) {
	if !IsImage(createPNG(t, 2, 2)) {
		t.Error("Expected PNG data to be detected as an image")
	}
	if !IsImage(createJPEG(t, 2, 2)) {
		t.Error("Expected JPEG data to be detected as an image")
	}
	if IsImage([]byte("just some text")) {
		t.Error("Expected text not to be detected as an image")
	}
}

func TestLoader_SkipsUnreadableFile(t *testing.T) {
	tmpDir := t.TempDir()
	png := createPNG(t, 4, 4)
	createTestFile(t, tmpDir, "a.png", png)
	locked := createTestFile(t, tmpDir, "locked.png", png)
	createTestFile(t, tmpDir, "z.png", png)

	loader := &fileLoader{
		walk: filepath.Walk,
		detect: func(path string) (*mimetype.MIME, error) {
			if path == locked {
				return nil, os.ErrPermission
			}
			return mimetype.DetectFile(path)
		},
	}

	inputs, err := loader.Load([]string{tmpDir})
	if err != nil {
		t.Fatalf("Expected unreadable file to be skipped, got error: %v", err)
	}

	expected := []string{"a.png", "z.png"}
	if got := inputNames(inputs); !slices.Equal(got, expected) {
		t.Errorf("Expected inputs %v, got %v", expected, got)
	}
}

func TestLoader_SkipsUnreadableDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	png := createPNG(t, 4, 4)
	createTestFile(t, tmpDir, "a.png", png)
	lockedDir := createTestDir(t, tmpDir, "locked")
	createTestFile(t, lockedDir, "inside.png", png)
	openDir := createTestDir(t, tmpDir, "open")
	createTestFile(t, openDir, "b.png", png)

	loader := &fileLoader{
		walk: func(root string, fn filepath.WalkFunc) error {
			return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
				if path == lockedDir {
					return fn(path, info, os.ErrPermission)
				}
				return fn(path, info, err)
			})
		},
		detect: mimetype.DetectFile,
	}

	inputs, err := loader.Load([]string{tmpDir})
	if err != nil {
		t.Fatalf("Expected unreadable directory to be skipped, got error: %v", err)
	}

	expected := []string{"a.png", "b.png"}
	if got := inputNames(inputs); !slices.Equal(got, expected) {
		t.Errorf("Expected inputs %v, got %v", expected, got)
	}
}
