package engine

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/pkg/framecodec"
)

// Local is a CPU demo engine. It flattens the sketch onto white, then blends
// every pixel toward a seed-derived tint by strength and posterizes it more
// coarsely for fewer steps. The output is deterministic for a given input and
// ParamSet.
type Local struct {
	latency time.Duration
}

// NewLocal creates a local engine that sleeps latency per call.
func NewLocal(latency time.Duration) *Local {
	return &Local{latency: latency}
}

// Transform renders input with params. An empty input is a blank canvas.
func (l *Local) Transform(ctx context.Context, input domain.Frame, params domain.ParamSet) (domain.Frame, error) {
	var src *image.RGBA
	if input.Empty() {
		src = framecodec.Blank()
	} else {
		img, err := framecodec.Decode(input.Bytes())
		if err != nil {
			return domain.Frame{}, err
		}
		src = framecodec.FlattenAlpha(img)
	}

	if l.latency > 0 {
		timer := time.NewTimer(l.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return domain.Frame{}, ctx.Err()
		}
	}

	tint := seedTint(params.Seed)
	levels := posterLevels(params.Steps)
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+0] = posterize(blend(src.Pix[i+0], tint.R, params.Strength), levels)
		src.Pix[i+1] = posterize(blend(src.Pix[i+1], tint.G, params.Strength), levels)
		src.Pix[i+2] = posterize(blend(src.Pix[i+2], tint.B, params.Strength), levels)
		src.Pix[i+3] = 0xff
	}

	return domain.NewFrame(framecodec.Encode(src))
}

// seedTint maps a seed to a stable colour using a 64-bit mix.
func seedTint(seed int64) color.RGBA {
	x := uint64(seed)
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return color.RGBA{R: uint8(x), G: uint8(x >> 8), B: uint8(x >> 16), A: 0xff}
}

// blend multiplies c by the tint, weighted by strength in [0,1].
func blend(c, tint uint8, strength float64) uint8 {
	mul := float64(c) * float64(tint) / 255
	v := float64(c)*(1-strength) + mul*strength
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// posterLevels grows with steps: 2 levels at one step, up to 32.
func posterLevels(steps int) int {
	n := 1 << min(steps, 5)
	if n < 2 {
		n = 2
	}
	return n
}

func posterize(c uint8, levels int) uint8 {
	step := 255 / (levels - 1)
	q := (int(c) + step/2) / step * step
	if q > 255 {
		q = 255
	}
	return uint8(q)
}
