package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/drawstream/internal/ports"
)

// ServerConfig contains configuration for the stream server.
type ServerConfig struct {
	// Addr is the host:port to listen on.
	Addr string

	// Path is the HTTP path that accepts WebSocket upgrades. Default: "/".
	Path string

	// PollInterval bounds each worker's wait on an empty mailbox.
	PollInterval time.Duration
}

// Server accepts connections and runs one Handler per connection.
//
// Shutdown stops accepting without touching open connections.
// CloseSessions propagates a stop to every open handler. Wait blocks until
// all handlers have exited.
type Server struct {
	cfg      ServerConfig
	upgrader ports.ConnUpgrader
	engine   ports.TransformEngine
	gate     ports.InferenceGate
	defaults *Defaults
	stats    *Stats
	logger   ports.Logger

	httpServer *http.Server
	listener   net.Listener

	mu             sync.Mutex
	accepting      bool
	sessionsClosed bool
	sessions       map[string]context.CancelFunc
	drained        chan struct{}
}

// NewServer creates a server. Call Listen and then Serve.
func NewServer(
	cfg ServerConfig,
	upgrader ports.ConnUpgrader,
	engine ports.TransformEngine,
	gate ports.InferenceGate,
	defaults *Defaults,
	stats *Stats,
	logger ports.Logger,
) *Server {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	s := &Server{
		cfg:      cfg,
		upgrader: upgrader,
		engine:   engine,
		gate:     gate,
		defaults: defaults,
		stats:    stats,
		logger:   logger,
		sessions: make(map[string]context.CancelFunc),
		drained:  make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, s)
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Listen binds the listening endpoint. A bind failure is fatal to the caller.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.accepting = true
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until Shutdown. Returns nil after Shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("serve called before listen")
	}

	s.stats.MarkStarted(time.Now())
	s.logger.Info("listening", ports.String("url", "ws://"+ln.Addr().String()+s.cfg.Path))

	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections immediately. Connections that are
// already open keep being served.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	wasAccepting := s.accepting
	s.accepting = false
	s.mu.Unlock()

	if wasAccepting {
		s.logger.Info("stopped accepting connections")
	}
	// Hijacked WebSocket connections are not affected by Close.
	if err := s.httpServer.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// CloseSessions stops accepting and signals every open handler to tear down.
func (s *Server) CloseSessions() {
	_ = s.Shutdown()

	s.mu.Lock()
	s.sessionsClosed = true
	cancels := make([]context.CancelFunc, 0, len(s.sessions))
	for _, cancel := range s.sessions {
		cancels = append(cancels, cancel)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Wait blocks until every handler has exited or ctx is done.
func (s *Server) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if len(s.sessions) == 0 {
			s.mu.Unlock()
			return nil
		}
		drained := s.drained
		s.mu.Unlock()

		select {
		case <-drained:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Sessions returns the number of open connections.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ServeHTTP upgrades the request and serves the connection until it ends.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	accepting := s.accepting
	s.mu.Unlock()
	if !accepting {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r)
	if err != nil {
		s.logger.Warn("upgrade failed", ports.String("remote", r.RemoteAddr), ports.Err(err))
		return
	}

	id := uuid.NewString()
	ctx, ok := s.register(id)
	if !ok {
		_ = conn.Close()
		return
	}
	defer s.unregister(id)

	logger := ports.With(s.logger,
		ports.String("conn_id", id),
		ports.String("remote", conn.RemoteAddr()),
	)
	h := NewHandler(conn, s.engine, s.gate, s.defaults.Get(), s.cfg.PollInterval, s.stats, logger)
	h.Serve(ctx)
}

func (s *Server) register(id string) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionsClosed {
		return nil, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.sessions[id] = cancel
	return ctx, true
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.sessions[id]; ok {
		cancel()
		delete(s.sessions, id)
	}
	close(s.drained)
	s.drained = make(chan struct{})
}
