// Package drawstream provides an embeddable streaming image-transform server.
//
// Clients hold a persistent WebSocket connection and stream 512x512 RGBA
// frames (binary messages) and JSON control messages (text messages). Each
// connection gets a dedicated worker that always processes the most recent
// input, skips frames identical to the last one, and runs the transform
// under a process-wide inference gate so the engine is never re-entered.
//
// # Basic Usage
//
//	cfg := drawstream.DefaultConfig()
//	cfg.ListenAddr = "localhost:8079"
//
//	srv, err := drawstream.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := srv.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Engines
//
// Without [WithEngine] a CPU demo engine is used. Pass any [TransformEngine]
// implementation to plug in a real model.
//
// # Shutdown
//
// [Server.RaiseShutdown] stops accepting new connections while open
// connections keep being served. [Server.Stop] does the same, then waits up
// to Config.ShutdownTimeout for connections to end before closing them.
//
// # Lifecycle States
//
// A Server can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use [Server.Status] to
// query the current state.
//
// # Plugins
//
// Plugins are initialized on Start in registration order and shut down on
// Stop in reverse order:
//
//	import "github.com/bft-labs/drawstream/plugins/configwatcher"
//
//	srv, err := drawstream.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
//	)
package drawstream
