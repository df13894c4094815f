package compress

import (
	"fmt"
	"strings"
)

// Format is an output encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat converts a user-supplied format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJPEG, FormatPNG, FormatWebP:
		return f, nil
	case "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// MimeType returns the media type the format is encoded as.
func (f Format) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	default:
		return ""
	}
}

// Extension returns the file extension (without dot) used for downloads.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatWebP:
		return "webp"
	default:
		return ""
	}
}

// Lossy reports whether quality affects the encoding.
func (f Format) Lossy() bool {
	return f == FormatJPEG || f == FormatWebP
}

// Settings is supplied once per batch run and never stored on entries.
type Settings struct {
	// Quality is a fraction in [0,1]; ignored by lossless formats.
	Quality float64
	// MaxWidth constrains the output width; images are never upscaled.
	MaxWidth int
	// Format is the output encoding.
	Format Format
}

// DefaultSettings returns quality 0.8, width 1920, jpeg.
func DefaultSettings() Settings {
	return Settings{
		Quality:  0.8,
		MaxWidth: 1920,
		Format:   FormatJPEG,
	}
}

// Validate checks the ranges documented on Settings.
func (s Settings) Validate() error {
	if s.Quality < 0 || s.Quality > 1 {
		return fmt.Errorf("%w: quality %v outside [0,1]", ErrInvalidSettings, s.Quality)
	}
	if s.MaxWidth <= 0 {
		return fmt.Errorf("%w: max width %d must be positive", ErrInvalidSettings, s.MaxWidth)
	}
	if s.Format.MimeType() == "" {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSettings, ErrUnsupportedFormat, s.Format)
	}
	return nil
}

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Compressed is the result of re-encoding one image.
type Compressed struct {
	// Data is the encoded payload.
	Data []byte
	// Size is the exact encoded byte length.
	Size int64
	// Format is the encoding of Data.
	Format Format
	// Dimensions of the encoded image.
	Dimensions Dimensions
}

// MimeType returns the media type of Data.
func (c *Compressed) MimeType() string {
	return c.Format.MimeType()
}

// ProgressEvent represents a progress update during a batch run.
type ProgressEvent struct {
	// Stage is "compressing", "compressed" or "failed".
	Stage string
	// Current is the 1-based position of the item in the batch.
	Current int
	// Total is the number of items in the batch.
	Total int
	// Message is a human-readable description of the current operation.
	Message string
	// File is the name of the item.
	File string
}
