package domain

import "errors"

// Domain errors represent error conditions in the drawstream domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrProtocol marks a malformed inbound message. The message is discarded
	// and the connection keeps running.
	ErrProtocol = errors.New("drawstream: protocol error")

	// ErrFrameSize is returned when a binary message is not exactly FrameSize bytes.
	ErrFrameSize = errors.New("drawstream: invalid frame size")

	// ErrTransform is returned when the transform engine fails or produces an
	// unusable result. It is fatal to the owning connection only.
	ErrTransform = errors.New("drawstream: transform failed")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("drawstream: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("drawstream: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("drawstream: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("drawstream: invalid configuration")
)
