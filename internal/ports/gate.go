package ports

import "context"

// InferenceGate serializes access to the single TransformEngine.
// At most one caller holds the gate at a time. No ordering is guaranteed
// among waiters.
type InferenceGate interface {
	// Acquire blocks until the gate is held or ctx is done.
	// Returns ctx.Err() if the wait was abandoned.
	Acquire(ctx context.Context) error

	// Release frees the gate. Must be called exactly once per successful Acquire.
	Release()
}
