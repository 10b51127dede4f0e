// Package drawstream runs a streaming transform server until its context is
// cancelled.
//
// Example usage:
//
//	cfg := drawstream.DefaultConfig()
//	cfg.ListenAddr = ":8079"
//	cfg.Params.Prompt = "charcoal sketch"
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := drawstream.Run(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control over the lifecycle use pkg/drawstream directly.
package drawstream

import (
	"context"

	lib "github.com/bft-labs/drawstream/pkg/drawstream"
)

// Config holds the configuration for the stream server.
type Config = lib.Config

// Option configures optional behavior of the server.
type Option = lib.Option

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return lib.DefaultConfig()
}

// Run starts the server and blocks until ctx is cancelled, then stops
// accepting and tears down open connections within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	s, err := lib.New(cfg, opts...)
	if err != nil {
		return err
	}
	// Start gets a context that outlives ctx so that cancellation goes
	// through the two-phase Stop below.
	if err := s.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	<-ctx.Done()
	s.RaiseShutdown()
	return s.Stop()
}
