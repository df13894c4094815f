package compress

import (
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with at most two decimals, e.g. "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	unit := 0
	for math.Abs(value) >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[unit]
}

// CompressionRatio returns the percentage saved, rounded half up.
// It is 0 when originalSize is not positive and negative when the output grew.
func CompressionRatio(originalSize, compressedSize int64) int {
	if originalSize <= 0 {
		return 0
	}
	saved := (1 - float64(compressedSize)/float64(originalSize)) * 100
	return int(math.Floor(saved + 0.5))
}

// OutputFileName derives the download name: "photo.png" in jpeg becomes "photo_compressed.jpg".
func OutputFileName(name string, format Format) string {
	base := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		base = name[:i]
	}
	return base + "_compressed." + format.Extension()
}

// TruncateFileName shortens name to maxLength characters for display,
// keeping the extension and marking the cut with "...".
func TruncateFileName(name string, maxLength int) string {
	runes := []rune(name)
	if len(runes) <= maxLength {
		return name
	}

	var ext []rune
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = []rune(name[i:])
	}
	stem := runes[:len(runes)-len(ext)]

	keep := maxLength - 3 - len(ext)
	if keep < 0 {
		keep = 0
	}
	if keep > len(stem) {
		keep = len(stem)
	}
	return string(stem[:keep]) + "..." + string(ext)
}
