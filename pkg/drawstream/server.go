package drawstream

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bft-labs/drawstream/internal/adapters/engine"
	"github.com/bft-labs/drawstream/internal/adapters/fs"
	"github.com/bft-labs/drawstream/internal/adapters/ws"
	"github.com/bft-labs/drawstream/internal/app"
	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// Server is a streaming transform server that can be embedded in other
// applications. Use New() to create an instance, then Start() to listen.
type Server struct {
	config     Config
	lifecycle  *app.Lifecycle
	engine     ports.TransformEngine
	gate       *app.Gate
	defaults   *app.Defaults
	stats      *app.Stats
	statusRepo ports.StatusRepository
	logger     ports.Logger
	plugins    []Plugin

	mu     sync.Mutex
	stream *app.Server
	signal *app.ShutdownSignal
	cancel context.CancelFunc
}

// New creates a Server in StateStopped; call Start() to begin listening.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	eng := o.engine
	if eng == nil {
		eng = engine.NewLocal(0)
	}

	var statusRepo ports.StatusRepository
	if cfg.StatusDir != "" {
		statusRepo = fs.NewStatusFileRepository(cfg.StatusDir)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	return &Server{
		config:     cfg,
		lifecycle:  app.NewLifecycle(o.logger, emitter),
		engine:     eng,
		gate:       app.NewGate(),
		defaults:   app.NewDefaults(cfg.Params),
		stats:      app.NewStats(),
		statusRepo: statusRepo,
		logger:     o.logger,
		plugins:    o.plugins,
	}, nil
}

// Start binds the stream endpoint and serves connections in the background.
// Returns an error if already running or if the address cannot be bound.
// Cancelling ctx stops accepting new connections.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	upgrader := ws.NewUpgrader(ws.Config{Defaults: s.defaults.Get})
	stream := app.NewServer(app.ServerConfig{
		Addr:         s.config.ListenAddr,
		Path:         s.config.StreamPath,
		PollInterval: s.config.PollInterval,
	}, upgrader, s.engine, s.gate, s.defaults, s.stats, s.logger)

	if err := stream.Listen(); err != nil {
		cancel()
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "listen failed")
		return err
	}

	pluginCfg := PluginConfig{
		ConfigPath:       s.config.ConfigPath,
		Logger:           s.logger,
		DefaultParams:    s.DefaultParams,
		SetDefaultParams: s.SetDefaultParams,
	}
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			_ = stream.Shutdown()
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	signal := app.NewShutdownSignal()
	coordinator := app.NewCoordinator(signal, stream, s.logger)

	s.stream = stream
	s.signal = signal
	s.cancel = cancel

	if err := s.lifecycle.TransitionTo(app.StateRunning, "listening"); err != nil {
		cancel()
		_ = stream.Shutdown()
		return err
	}

	s.lifecycle.Go(func() {
		if err := stream.Serve(); err != nil {
			s.logger.Error("accept loop failed", ports.Err(err))
			cancel()
			_ = s.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		}
	})
	s.lifecycle.Go(func() {
		if !coordinator.Run(runCtx) {
			_ = stream.Shutdown()
		}
	})
	if s.statusRepo != nil {
		s.lifecycle.Go(func() { s.statusLoop(runCtx) })
	}

	return nil
}

// RaiseShutdown stops accepting new connections. Open connections keep being
// served until they end or Stop is called. Safe to call from a signal handler
// goroutine and more than once.
func (s *Server) RaiseShutdown() {
	s.mu.Lock()
	signal := s.signal
	s.mu.Unlock()

	if signal != nil {
		signal.Raise()
	}
}

// Stop stops accepting, waits up to Config.ShutdownTimeout for open
// connections to end, then closes the rest and waits for their workers.
// In-flight transforms always complete. Returns ErrShutdownTimeout if
// teardown did not finish.
func (s *Server) Stop() error {
	s.mu.Lock()

	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	stream, signal, cancel := s.stream, s.signal, s.cancel
	s.mu.Unlock()

	signal.Raise()
	if err := stream.Shutdown(); err != nil {
		s.logger.Warn("listener shutdown failed", ports.Err(err))
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	if err := stream.Wait(drainCtx); err != nil {
		s.logger.Warn("closing connections still open after shutdown timeout",
			ports.Int("connections", stream.Sessions()),
			ports.Duration("timeout", s.config.ShutdownTimeout))
	}
	drainCancel()
	stream.CloseSessions()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	waitErr := stream.Wait(closeCtx)
	closeCancel()

	cancel()
	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	if err == nil && waitErr != nil {
		err = domain.ErrShutdownTimeout
	}

	// Shutdown plugins (in reverse order)
	shutdownCtx := context.Background()
	for i := len(s.plugins) - 1; i >= 0; i-- {
		p := s.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(shutdownErr))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	s.saveStatus(context.Background())

	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Server) Status() State {
	return convertState(s.lifecycle.State())
}

// Stats returns a statistics snapshot including the lifecycle state.
func (s *Server) Stats() Status {
	st := s.stats.Snapshot()
	st.State = s.lifecycle.State().String()
	return st
}

// Addr returns the bound stream address, or nil when not started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream == nil {
		return nil
	}
	return s.stream.Addr()
}

// StreamURL returns the WebSocket URL clients connect to, or "" when not started.
func (s *Server) StreamURL() string {
	addr := s.Addr()
	if addr == nil {
		return ""
	}
	return "ws://" + addr.String() + s.config.StreamPath
}

// DefaultParams returns the ParamSet new sessions start with.
func (s *Server) DefaultParams() ParamSet {
	return s.defaults.Get()
}

// SetDefaultParams replaces the defaults for new sessions and for omitted
// fields of later param updates. Running sessions keep their params.
func (s *Server) SetDefaultParams(p ParamSet) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	s.defaults.Set(p)
	s.logger.Info("default params updated",
		ports.Int("steps", p.Steps),
		ports.Float64("strength", p.Strength),
		ports.Int64("seed", p.Seed))
	return nil
}

func (s *Server) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.saveStatus(ctx)
		}
	}
}

func (s *Server) saveStatus(ctx context.Context) {
	if s.statusRepo == nil {
		return
	}
	if err := s.statusRepo.Save(ctx, s.Stats()); err != nil {
		s.logger.Warn("failed to write status", ports.Err(err))
	}
}
