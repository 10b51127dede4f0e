// Package engine provides TransformEngine implementations.
package engine

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// Engine kinds accepted by New.
const (
	KindLocal  = "local"
	KindRemote = "remote"
)

// DefaultTimeout bounds a single remote transform.
const DefaultTimeout = 30 * time.Second

// Config selects and configures an engine.
type Config struct {
	// Kind is KindLocal or KindRemote.
	Kind string

	// URL is the base URL of the inference service (remote only).
	URL string

	// AuthKey is sent as a Bearer token when set (remote only).
	AuthKey string

	// Timeout bounds one remote call. Default: DefaultTimeout.
	Timeout time.Duration

	// Latency is an artificial delay added to each local transform.
	Latency time.Duration
}

// New creates the engine described by cfg.
func New(cfg Config, client ports.HTTPClient, logger ports.Logger) (ports.TransformEngine, error) {
	switch cfg.Kind {
	case "", KindLocal:
		return NewLocal(cfg.Latency), nil
	case KindRemote:
		if cfg.URL == "" {
			return nil, fmt.Errorf("%w: remote engine requires a URL", domain.ErrInvalidConfig)
		}
		if client == nil {
			client = &http.Client{}
		}
		return NewRemote(cfg.URL, cfg.AuthKey, cfg.Timeout, client, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine kind %q", domain.ErrInvalidConfig, cfg.Kind)
	}
}
