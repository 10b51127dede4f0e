package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/drawstream/internal/domain"
)

const (
	// DefaultListenAddr is where the stream endpoint listens.
	DefaultListenAddr = "localhost:8079"

	// DefaultUIAddr is where the web UI and status endpoints listen.
	DefaultUIAddr = "localhost:8080"
)

// Engine kinds.
const (
	EngineLocal  = "local"
	EngineRemote = "remote"
)

// Config holds CLI configuration for drawstream.
type Config struct {
	ListenAddr string
	StreamPath string
	UIAddr     string
	UIDir      string

	EngineKind    string
	EngineURL     string
	EngineAuthKey string
	EngineTimeout time.Duration
	EngineLatency time.Duration

	PollInterval    time.Duration
	ShutdownTimeout time.Duration

	StatusDir      string
	StatusInterval time.Duration

	LogLevel string

	Prompt   string
	Seed     int64
	Steps    int
	Strength float64

	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	p := domain.DefaultParams()
	return Config{
		ListenAddr:      DefaultListenAddr,
		StreamPath:      "/",
		UIAddr:          DefaultUIAddr,
		EngineKind:      EngineLocal,
		EngineTimeout:   30 * time.Second,
		PollInterval:    time.Second,
		ShutdownTimeout: 30 * time.Second,
		StatusInterval:  10 * time.Second,
		LogLevel:        "info",
		Prompt:          p.Prompt,
		Seed:            p.Seed,
		Steps:           p.Steps,
		Strength:        p.Strength,
	}
}

// Params returns the default ParamSet described by the config.
func (c Config) Params() domain.ParamSet {
	return domain.ParamSet{
		Prompt:   c.Prompt,
		Seed:     c.Seed,
		Steps:    c.Steps,
		Strength: c.Strength,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if c.StreamPath == "" {
		c.StreamPath = "/"
	}
	if !strings.HasPrefix(c.StreamPath, "/") {
		c.StreamPath = "/" + c.StreamPath
	}

	switch c.EngineKind {
	case "":
		c.EngineKind = EngineLocal
	case EngineLocal:
	case EngineRemote:
		if c.EngineURL == "" {
			return fmt.Errorf("%w: engine-url is required for the remote engine", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown engine %q", domain.ErrInvalidConfig, c.EngineKind)
	}

	// Ensure no trailing slash
	c.EngineURL = strings.TrimRight(c.EngineURL, "/")

	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", domain.ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.StatusDir != "" && c.StatusInterval <= 0 {
		return fmt.Errorf("%w: status interval must be positive", domain.ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value from a pointer if not nil and flag not changed.
func (s *configSetter) setInt64(flag string, value *int64, dst *int64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloat sets a float64 value from a pointer if not nil and flag not changed.
// Zero is a meaningful value, so absence is signalled by nil.
func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
