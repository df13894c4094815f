package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetOutput_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	Debug("hidden record")
	Info("visible record", "file", "a.png")

	out := buf.String()
	if strings.Contains(out, "hidden record") {
		t.Errorf("Expected debug record to be filtered, got: %s", out)
	}
	if !strings.Contains(out, "visible record") || !strings.Contains(out, "file=a.png") {
		t.Errorf("Expected info record with attributes, got: %s", out)
	}

	buf.Reset()
	SetOutput(&buf, true)
	Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("Expected debug record when debug is enabled, got: %s", buf.String())
	}
}

func TestSetup_WritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yasuo.log")

	closeLog := Setup(Options{File: path})
	Warn("written to file", "count", 3)
	if err := closeLog(); err != nil {
		t.Fatalf("Failed to close log file: %v", err)
	}
	t.Cleanup(func() { SetOutput(os.Stdout, false) })

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "written to file") {
		t.Errorf("Expected log file to contain record, got: %s", content)
	}
}
