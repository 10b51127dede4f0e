package domain

import (
	"bytes"
	"fmt"
)

// Frame geometry. Frames are row-major RGBA with a top-left origin.
const (
	FrameWidth    = 512
	FrameHeight   = 512
	BytesPerPixel = 4

	// FrameSize is the exact length in bytes of every frame on the wire.
	FrameSize = FrameWidth * FrameHeight * BytesPerPixel
)

// Frame is one RGBA raster buffer exchanged over a connection.
// The zero value is the empty frame: no pixel data has been received yet.
type Frame struct {
	pix []byte
}

// NewFrame wraps b as a Frame. The slice is not copied and must not be
// modified afterwards. Returns ErrFrameSize if len(b) != FrameSize.
func NewFrame(b []byte) (Frame, error) {
	if len(b) != FrameSize {
		return Frame{}, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(b), FrameSize)
	}
	return Frame{pix: b}, nil
}

// Bytes returns the raw RGBA pixels. Callers must not modify the result.
func (f Frame) Bytes() []byte {
	return f.pix
}

// Empty reports whether the frame carries no pixel data.
func (f Frame) Empty() bool {
	return len(f.pix) == 0
}

// Equal reports whether both frames hold identical bytes.
func (f Frame) Equal(other Frame) bool {
	return bytes.Equal(f.pix, other.pix)
}
