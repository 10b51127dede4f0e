package app

import (
	"context"
	"sync"

	"github.com/bft-labs/drawstream/internal/ports"
)

// ShutdownSignal is a raise-once flag shared between the process entry point
// and the Coordinator.
type ShutdownSignal struct {
	once sync.Once
	ch   chan struct{}
}

// NewShutdownSignal creates an unraised signal.
func NewShutdownSignal() *ShutdownSignal {
	return &ShutdownSignal{ch: make(chan struct{})}
}

// Raise sets the signal. Safe to call more than once.
func (s *ShutdownSignal) Raise() {
	s.once.Do(func() { close(s.ch) })
}

// Raised reports whether Raise has been called.
func (s *ShutdownSignal) Raised() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Done is closed when the signal is raised.
func (s *ShutdownSignal) Done() <-chan struct{} {
	return s.ch
}

// Listener is the part of Server the Coordinator drives.
type Listener interface {
	Shutdown() error
}

// Coordinator watches a ShutdownSignal and stops the listener when it is raised.
type Coordinator struct {
	signal   *ShutdownSignal
	listener Listener
	logger   ports.Logger
}

// NewCoordinator creates a coordinator for listener.
func NewCoordinator(signal *ShutdownSignal, listener Listener, logger ports.Logger) *Coordinator {
	return &Coordinator{signal: signal, listener: listener, logger: logger}
}

// Run blocks until the signal is raised or ctx is done. When the signal is
// raised it shuts the listener down and returns true.
func (c *Coordinator) Run(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.signal.Done():
	}

	c.logger.Info("shutdown signal raised")
	if err := c.listener.Shutdown(); err != nil {
		c.logger.Error("listener shutdown failed", ports.Err(err))
	}
	return true
}
