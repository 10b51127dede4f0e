package drawstream

import (
	"fmt"
	"time"

	"github.com/bft-labs/drawstream/internal/app"
	"github.com/bft-labs/drawstream/internal/domain"
)

// Config holds the configuration for a Server.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// ListenAddr is the host:port of the stream endpoint.
	ListenAddr string

	// StreamPath is the HTTP path accepting WebSocket upgrades. Default: "/".
	StreamPath string

	// PollInterval bounds how long an idle worker waits before re-checking
	// whether it should stop. Default: 1s.
	PollInterval time.Duration

	// ShutdownTimeout is how long Stop waits for open connections to end
	// before closing them. Default: 30s.
	ShutdownTimeout time.Duration

	// StatusDir, when set, receives a periodic status.json snapshot.
	StatusDir string

	// StatusInterval is the status.json write period. Default: 10s.
	StatusInterval time.Duration

	// Params are the defaults for new sessions and omitted control fields.
	Params ParamSet

	// ConfigPath is handed to plugins that watch the configuration file.
	ConfigPath string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "localhost:8079",
		StreamPath:      "/",
		PollInterval:    app.DefaultPollInterval,
		ShutdownTimeout: app.ShutdownTimeout,
		StatusInterval:  10 * time.Second,
		Params:          domain.DefaultParams(),
	}
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.StreamPath == "" {
		c.StreamPath = d.StreamPath
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = d.StatusInterval
	}
	if c.Params == (ParamSet{}) {
		c.Params = d.Params
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}
