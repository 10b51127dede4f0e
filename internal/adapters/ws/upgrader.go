package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

const (
	// DefaultReadLimit admits one frame plus framing slack. Larger messages
	// end the connection.
	DefaultReadLimit = 2 * domain.FrameSize

	// DefaultWriteTimeout bounds a single result write.
	DefaultWriteTimeout = 10 * time.Second
)

// Config contains configuration for the upgrader.
type Config struct {
	// ReadLimit is the largest message accepted. Default: DefaultReadLimit.
	ReadLimit int64

	// WriteTimeout bounds a write when the context carries no deadline.
	WriteTimeout time.Duration

	// Defaults returns the params that omitted control fields take.
	// Default: domain.DefaultParams.
	Defaults func() domain.ParamSet
}

// Upgrader implements ports.ConnUpgrader over gorilla/websocket.
type Upgrader struct {
	cfg      Config
	upgrader websocket.Upgrader
}

// NewUpgrader creates an upgrader. Any origin is accepted.
func NewUpgrader(cfg Config) *Upgrader {
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = DefaultReadLimit
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Defaults == nil {
		cfg.Defaults = domain.DefaultParams
	}
	return &Upgrader{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Upgrade performs the WebSocket handshake.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (ports.Conn, error) {
	ws, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(u.cfg.ReadLimit)
	return newConn(ws, u.cfg.WriteTimeout, u.cfg.Defaults), nil
}

var _ ports.ConnUpgrader = (*Upgrader)(nil)
