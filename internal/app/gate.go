package app

import (
	"context"

	"github.com/bft-labs/drawstream/internal/ports"
)

// Gate is the process-wide inference gate: a single-owner handle on the
// TransformEngine. One Gate is created per process and injected into every
// worker.
type Gate struct {
	held chan struct{}
}

// NewGate creates an unheld gate.
func NewGate() *Gate {
	return &Gate{held: make(chan struct{}, 1)}
}

// Acquire blocks until the gate is held or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case g.held <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the gate. Releasing an unheld gate is a programming error.
func (g *Gate) Release() {
	select {
	case <-g.held:
	default:
		panic("drawstream: release of unheld inference gate")
	}
}

var _ ports.InferenceGate = (*Gate)(nil)
