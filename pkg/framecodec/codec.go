package framecodec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

const (
	// Width is the frame width in pixels.
	Width = 512

	// Height is the frame height in pixels.
	Height = 512

	// Size is the byte length of one frame.
	Size = Width * Height * 4
)

// ErrSize is returned when a byte slice is not exactly Size bytes.
var ErrSize = errors.New("framecodec: wrong frame size")

// Bounds is the rectangle every frame image occupies.
var Bounds = image.Rect(0, 0, Width, Height)

// Decode wraps a copy of pix as an image.
func Decode(pix []byte) (*image.RGBA, error) {
	if len(pix) != Size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSize, len(pix), Size)
	}
	img := image.NewRGBA(Bounds)
	copy(img.Pix, pix)
	return img, nil
}

// Encode returns the frame bytes of img. Images of another size are scaled to
// Width x Height with nearest-neighbour sampling.
func Encode(img image.Image) []byte {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect == Bounds && rgba.Stride == Width*4 {
		out := make([]byte, Size)
		copy(out, rgba.Pix)
		return out
	}

	dst := image.NewRGBA(Bounds)
	src := img.Bounds()
	if src.Dx() == Width && src.Dy() == Height {
		draw.Draw(dst, Bounds, img, src.Min, draw.Src)
		return dst.Pix
	}
	if src.Empty() {
		return dst.Pix
	}
	for y := 0; y < Height; y++ {
		sy := src.Min.Y + y*src.Dy()/Height
		for x := 0; x < Width; x++ {
			sx := src.Min.X + x*src.Dx()/Width
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst.Pix
}

// Blank returns an opaque white frame image.
func Blank() *image.RGBA {
	img := image.NewRGBA(Bounds)
	draw.Draw(img, Bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// FlattenAlpha composites img over an opaque white background.
// The result is fully opaque.
func FlattenAlpha(img image.Image) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Rect, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Rect, img, img.Bounds().Min, draw.Over)
	return dst
}
