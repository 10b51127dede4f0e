package domain

import (
	"fmt"
	"math"
)

// DefaultPrompt is the demo prompt used when a client does not send one.
const DefaultPrompt = "ocean wave curling in with rays of sun in spray, photograph, 8k, 35mm digital, f1.8, depth of field, HDR "

// ParamSet configures one transform invocation.
type ParamSet struct {
	Prompt   string  `json:"prompt" toml:"prompt"`
	Seed     int64   `json:"seed" toml:"seed"`
	Steps    int     `json:"steps" toml:"steps"`
	Strength float64 `json:"strength" toml:"strength"`
}

// DefaultParams returns the ParamSet a new session starts with.
func DefaultParams() ParamSet {
	return ParamSet{
		Prompt:   DefaultPrompt,
		Seed:     42,
		Steps:    1,
		Strength: 1.0,
	}
}

// Validate checks the range invariants: steps >= 1 and strength in [0, 1].
func (p ParamSet) Validate() error {
	if p.Steps < 1 {
		return fmt.Errorf("%w: steps must be >= 1, got %d", ErrProtocol, p.Steps)
	}
	if p.Strength < 0 || p.Strength > 1 {
		return fmt.Errorf("%w: strength must be in [0,1], got %g", ErrProtocol, p.Strength)
	}
	return nil
}

// Normalize enforces steps*strength >= 1.0, which the downstream transform
// requires. When the product is too small, strength becomes 1.0 for a single
// step and 1.0/steps otherwise, rounded up when needed so the product holds
// exactly. Steps must already be >= 1.
func (p ParamSet) Normalize() ParamSet {
	if float64(p.Steps)*p.Strength < 1.0 {
		if p.Steps == 1 {
			p.Strength = 1.0
		} else {
			s := 1.0 / float64(p.Steps)
			// 1/steps can round down so that steps*s lands just below 1.
			if float64(p.Steps)*s < 1.0 {
				s = math.Nextafter(s, 1)
			}
			p.Strength = s
		}
	}
	return p
}
