package framecodec

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestDecode(t *testing.T) {
	pix := make([]byte, Size)
	pix[0], pix[1], pix[2], pix[3] = 10, 20, 30, 255

	img, err := Decode(pix)
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if img.Bounds() != Bounds {
		t.Errorf("bounds = %v, want %v", img.Bounds(), Bounds)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}

	// Decode copies its input.
	pix[0] = 99
	if img.Pix[0] != 10 {
		t.Error("Decode aliased the input slice")
	}
}

func TestDecode_WrongSize(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"short", Size - 1},
		{"long", Size + 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(make([]byte, tt.n)); !errors.Is(err, ErrSize) {
				t.Errorf("Decode() = %v, want ErrSize", err)
			}
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	img := image.NewRGBA(Bounds)
	img.SetRGBA(511, 511, color.RGBA{1, 2, 3, 4})

	out := Encode(img)
	if len(out) != Size {
		t.Fatalf("len = %d, want %d", len(out), Size)
	}
	if got := out[Size-4 : Size]; got[0] != 1 || got[3] != 4 {
		t.Errorf("last pixel = %v", got)
	}
}

func TestEncode_Scales(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 2, 2))
	small.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	small.SetRGBA(1, 1, color.RGBA{0, 0, 255, 255})

	out := Encode(small)
	if len(out) != Size {
		t.Fatalf("len = %d, want %d", len(out), Size)
	}
	img, _ := Decode(out)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("top-left = %v, want red", got)
	}
	if got := img.RGBAAt(511, 511); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("bottom-right = %v, want blue", got)
	}
}

func TestEncode_Gray(t *testing.T) {
	g := image.NewGray(Bounds)
	g.SetGray(5, 5, color.Gray{Y: 200})

	img, _ := Decode(Encode(g))
	if got := img.RGBAAt(5, 5); got != (color.RGBA{200, 200, 200, 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestBlank(t *testing.T) {
	img := Blank()
	for _, p := range []image.Point{{0, 0}, {256, 256}, {511, 511}} {
		if got := img.RGBAAt(p.X, p.Y); got != (color.RGBA{255, 255, 255, 255}) {
			t.Errorf("pixel %v = %v, want white", p, got)
		}
	}
}

func TestFlattenAlpha(t *testing.T) {
	tests := []struct {
		name string
		in   color.RGBA
		want color.RGBA
	}{
		{"transparent becomes white", color.RGBA{0, 0, 0, 0}, color.RGBA{255, 255, 255, 255}},
		{"opaque unchanged", color.RGBA{10, 20, 30, 255}, color.RGBA{10, 20, 30, 255}},
		{"half black", color.RGBA{0, 0, 0, 128}, color.RGBA{127, 127, 127, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			img.SetRGBA(0, 0, tt.in)
			if got := FlattenAlpha(img).RGBAAt(0, 0); got != tt.want {
				t.Errorf("FlattenAlpha = %v, want %v", got, tt.want)
			}
		})
	}
}
