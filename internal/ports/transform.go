package ports

import (
	"context"

	"github.com/bft-labs/drawstream/internal/domain"
)

// TransformEngine is the image-to-image operation applied to every accepted frame.
//
// Implementations are not required to be safe for concurrent use: callers
// serialize all invocations through an InferenceGate. The input may be the
// empty frame when a parameter update arrives before any frame; how that is
// rendered is up to the implementation, but it must not panic.
type TransformEngine interface {
	// Transform returns a new frame of exactly domain.FrameSize bytes.
	Transform(ctx context.Context, input domain.Frame, params domain.ParamSet) (domain.Frame, error)
}
