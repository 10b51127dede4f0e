package domain

import (
	"errors"
	"testing"
)

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"exact size", FrameSize, false},
		{"empty", 0, true},
		{"one byte short", FrameSize - 1, true},
		{"one byte long", FrameSize + 1, true},
		{"rgb instead of rgba", FrameWidth * FrameHeight * 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFrame(make([]byte, tt.size))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrFrameSize) {
					t.Errorf("error = %v, want ErrFrameSize", err)
				}
				if !f.Empty() {
					t.Error("frame should be empty on error")
				}
				return
			}
			if len(f.Bytes()) != FrameSize {
				t.Errorf("len(Bytes()) = %d, want %d", len(f.Bytes()), FrameSize)
			}
		})
	}
}

func TestFrame_Equal(t *testing.T) {
	a := make([]byte, FrameSize)
	b := make([]byte, FrameSize)
	c := make([]byte, FrameSize)
	c[FrameSize-1] = 1

	fa, _ := NewFrame(a)
	fb, _ := NewFrame(b)
	fc, _ := NewFrame(c)

	if !fa.Equal(fb) {
		t.Error("identical frames should be equal")
	}
	if fa.Equal(fc) {
		t.Error("frames differing in the last byte should not be equal")
	}
	if fa.Equal(Frame{}) {
		t.Error("frame should not equal the empty frame")
	}
	if !(Frame{}).Equal(Frame{}) {
		t.Error("empty frames should be equal")
	}
}
