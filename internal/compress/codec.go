package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"github.com/acm19/yasuo/internal/logger"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ImageCodec defines the interface for re-encoding a single image
type ImageCodec interface {
	// Compress decodes data, scales it to fit settings.MaxWidth and encodes it
	// in settings.Format at settings.Quality.
	Compress(data []byte, settings Settings) (*Compressed, error)
}

// imagingCodec implements ImageCodec with imaging for raster work and
// chai2010/webp for webp output
type imagingCodec struct {
	filter imaging.ResampleFilter
	bufs   sync.Pool
}

// NewImageCodec creates an ImageCodec using Lanczos resampling
func NewImageCodec() ImageCodec {
	return NewImageCodecWithFilter(imaging.Lanczos)
}

// NewImageCodecWithFilter creates an ImageCodec using the given resampling filter
func NewImageCodecWithFilter(filter imaging.ResampleFilter) ImageCodec {
	return &imagingCodec{
		filter: filter,
		bufs: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// Compress re-encodes one image
func (c *imagingCodec) Compress(data []byte, settings Settings) (*Compressed, error) {
	if settings.Format.MimeType() == "" {
		return nil, encodeError(fmt.Errorf("%w: %q", ErrUnsupportedFormat, settings.Format))
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, decodeError(err)
	}

	bounds := src.Bounds()
	target := CalculateSize(bounds.Dx(), bounds.Dy(), settings.MaxWidth)
	logger.Debug("Scaling image", "from", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()), "to", target.String())

	surface := src
	if target.Width != bounds.Dx() || target.Height != bounds.Dy() {
		surface = imaging.Resize(src, target.Width, target.Height, c.filter)
	}

	buf := c.bufs.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		c.bufs.Put(buf)
	}()

	if err := c.encode(buf, surface, settings); err != nil {
		return nil, encodeError(err)
	}

	out := bytes.Clone(buf.Bytes())
	return &Compressed{
		Data:       out,
		Size:       int64(len(out)),
		Format:     settings.Format,
		Dimensions: target,
	}, nil
}

func (c *imagingCodec) encode(buf *bytes.Buffer, img image.Image, settings Settings) error {
	switch settings.Format {
	case FormatJPEG:
		return imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality(settings.Quality)))
	case FormatPNG:
		return imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case FormatWebP:
		return webp.Encode(buf, img, &webp.Options{Quality: float32(percent(settings.Quality))})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, settings.Format)
	}
}

// jpegQuality maps a [0,1] fraction onto the encoder's 1-100 range.
func jpegQuality(q float64) int {
	return max(1, percent(q))
}

func percent(q float64) int {
	return min(100, max(0, int(math.Round(q*100))))
}
