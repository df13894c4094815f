package compress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/acm19/yasuo/internal/logger"
	"github.com/google/uuid"
)

// Outcome is the result of one item in a batch run.
type Outcome struct {
	Name         string
	OriginalSize int64
	// Compressed is set when Err is nil.
	Compressed *Compressed
	// Err is an *ItemError, or the context error for items never started.
	Err error
}

// OK reports whether the item was compressed.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Ratio is the percentage saved by a successful item, 0 otherwise.
func (o Outcome) Ratio() int {
	if o.Compressed == nil {
		return 0
	}
	return CompressionRatio(o.OriginalSize, o.Compressed.Size)
}

// Result holds every outcome of a batch run in queue order.
type Result struct {
	RunID    string
	Outcomes []Outcome
	Duration time.Duration
}

// Succeeded counts the successful items.
func (r *Result) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed counts the items that have no result.
func (r *Result) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Bytes returns the original and compressed byte totals over successful items.
func (r *Result) Bytes() (original, compressed int64) {
	for _, o := range r.Outcomes {
		if o.OK() {
			original += o.OriginalSize
			compressed += o.Compressed.Size
		}
	}
	return original, compressed
}

// BatchCompressor defines the interface for compressing every queue entry
type BatchCompressor interface {
	// RunAll compresses each entry in queue order, one at a time. Failures are
	// recorded per item and never stop the run. Results are written back to the
	// queue as soon as each item finishes.
	RunAll(ctx context.Context, queue *Queue, settings Settings) (*Result, error)
}

// batchCompressor implements the BatchCompressor interface
type batchCompressor struct {
	codec    ImageCodec
	progress chan<- ProgressEvent
}

// NewBatchCompressor creates a BatchCompressor. progress may be nil; events
// are dropped when the channel is full.
func NewBatchCompressor(codec ImageCodec, progress chan<- ProgressEvent) BatchCompressor {
	return &batchCompressor{
		codec:    codec,
		progress: progress,
	}
}

// RunAll processes a snapshot of the queue taken when the run starts
func (b *batchCompressor) RunAll(ctx context.Context, queue *Queue, settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	queue.ClearCompressed()
	entries := queue.Entries()
	total := len(entries)

	logger.Info("Starting batch", "run", runID, "files", total, "quality", settings.Quality,
		"max_width", settings.MaxWidth, "format", settings.Format)

	result := &Result{RunID: runID, Outcomes: make([]Outcome, 0, total)}
	for i, entry := range entries {
		outcome := Outcome{Name: entry.Name, OriginalSize: entry.Size}

		if err := ctx.Err(); err != nil {
			outcome.Err = err
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		b.emit(ProgressEvent{
			Stage:   "compressing",
			Current: i + 1,
			Total:   total,
			Message: fmt.Sprintf("Compressing file %d of %d", i+1, total),
			File:    entry.Name,
		})

		compressed, err := b.compressEntry(entry, settings)
		if err != nil {
			outcome.Err = &ItemError{Name: entry.Name, Err: err}
			logger.Error("Failed to compress file", "run", runID, "file", entry.Name, "error", err)
			b.emit(ProgressEvent{
				Stage:   "failed",
				Current: i + 1,
				Total:   total,
				Message: err.Error(),
				File:    entry.Name,
			})
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		outcome.Compressed = compressed
		if !queue.SetCompressed(entry.Key(), compressed) {
			logger.Debug("Entry removed during batch, result not stored", "run", runID, "file", entry.Name)
		}
		logger.Debug("Compressed file", "run", runID, "file", entry.Name,
			"original_bytes", entry.Size, "compressed_bytes", compressed.Size, "dimensions", compressed.Dimensions.String())
		b.emit(ProgressEvent{
			Stage:   "compressed",
			Current: i + 1,
			Total:   total,
			Message: fmt.Sprintf("Compressed file %d of %d", i+1, total),
			File:    entry.Name,
		})
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Duration = time.Since(start)
	logger.Info("Batch completed", "run", runID, "succeeded", result.Succeeded(), "failed", result.Failed(),
		"duration_seconds", result.Duration.Seconds())
	return result, nil
}

func (b *batchCompressor) compressEntry(entry TrackedFile, settings Settings) (*Compressed, error) {
	data, err := readSource(entry.Source)
	if err != nil {
		return nil, err
	}
	return b.codec.Compress(data, settings)
}

func readSource(src Source) ([]byte, error) {
	if src == nil {
		return nil, readError(fmt.Errorf("no content source"))
	}
	r, err := src.Open()
	if err != nil {
		return nil, readError(err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, readError(err)
	}
	return data, nil
}

func (b *batchCompressor) emit(ev ProgressEvent) {
	if b.progress == nil {
		return
	}
	select {
	case b.progress <- ev:
	default:
		logger.Debug("Progress event dropped (channel full)", "stage", ev.Stage)
	}
}
