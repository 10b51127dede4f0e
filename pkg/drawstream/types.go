package drawstream

import (
	"github.com/bft-labs/drawstream/internal/app"
	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// Re-exported domain types.
type (
	// Frame is one raw 512x512 RGBA image. The zero value is the empty frame.
	Frame = domain.Frame

	// ParamSet configures one transform invocation.
	ParamSet = domain.ParamSet

	// Status is a statistics snapshot.
	Status = domain.Status

	// TransformEngine turns an input frame into an output frame. It is never
	// called concurrently by a Server.
	TransformEngine = ports.TransformEngine

	// Logger is the interface for structured logging.
	Logger = ports.Logger

	// LogField represents a structured log field.
	LogField = ports.Field

	// HTTPClient is the interface for making HTTP requests.
	// *http.Client satisfies this interface.
	HTTPClient = ports.HTTPClient
)

// Frame geometry.
const (
	FrameWidth  = domain.FrameWidth
	FrameHeight = domain.FrameHeight
	FrameSize   = domain.FrameSize
)

// Errors returned by the server.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrFrameSize       = domain.ErrFrameSize
	ErrProtocol        = domain.ErrProtocol
	ErrTransform       = domain.ErrTransform
)

// NewFrame validates pix and wraps it as a Frame.
func NewFrame(pix []byte) (Frame, error) {
	return domain.NewFrame(pix)
}

// DefaultParams returns the ParamSet new sessions start with.
func DefaultParams() ParamSet {
	return domain.DefaultParams()
}

// State represents the lifecycle state of a Server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
