package compress

import (
	"errors"
	"fmt"
)

var (
	// ErrRead means the input content could not be read.
	ErrRead = errors.New("read failed")
	// ErrDecode means the input could not be interpreted as an image.
	ErrDecode = errors.New("decode failed")
	// ErrEncode means drawing or re-encoding failed.
	ErrEncode = errors.New("encode failed")

	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrInvalidSettings   = errors.New("invalid settings")
)

// ItemError is a per-item failure recorded by a batch run.
type ItemError struct {
	// Name identifies the queue entry that failed.
	Name string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// KindOf returns ErrRead, ErrDecode or ErrEncode for a per-item failure,
// or nil if err is none of them.
func KindOf(err error) error {
	for _, kind := range []error{ErrRead, ErrDecode, ErrEncode} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func readError(err error) error {
	return fmt.Errorf("%w: %w", ErrRead, err)
}

func decodeError(err error) error {
	return fmt.Errorf("%w: %w", ErrDecode, err)
}

func encodeError(err error) error {
	return fmt.Errorf("%w: %w", ErrEncode, err)
}
