package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/drawstream/internal/domain"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ListenAddr      string   `toml:"listen_addr"`
	StreamPath      string   `toml:"stream_path"`
	UIAddr          string   `toml:"ui_addr"`
	UIDir           string   `toml:"ui_dir"`
	EngineKind      string   `toml:"engine"`
	EngineURL       string   `toml:"engine_url"`
	EngineAuthKey   string   `toml:"engine_auth_key"`
	EngineTimeout   string   `toml:"engine_timeout"`
	EngineLatency   string   `toml:"engine_latency"`
	PollInterval    string   `toml:"poll_interval"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	StatusDir       string   `toml:"status_dir"`
	StatusInterval  string   `toml:"status_interval"`
	LogLevel        string   `toml:"log_level"`
	Prompt          string   `toml:"prompt"`
	Seed            *int64   `toml:"seed"`
	Steps           int      `toml:"steps"`
	Strength        *float64 `toml:"strength"`
	WatchConfig     *bool    `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.drawstream/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".drawstream", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("path", fc.StreamPath, &cfg.StreamPath)
	s.setString("ui-listen", fc.UIAddr, &cfg.UIAddr)
	s.setString("ui-dir", fc.UIDir, &cfg.UIDir)
	s.setString("engine", fc.EngineKind, &cfg.EngineKind)
	s.setString("engine-url", fc.EngineURL, &cfg.EngineURL)
	s.setString("engine-auth-key", fc.EngineAuthKey, &cfg.EngineAuthKey)
	s.setString("status-dir", fc.StatusDir, &cfg.StatusDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("engine-timeout", fc.EngineTimeout, &cfg.EngineTimeout); err != nil {
		return err
	}
	if err := s.setDuration("engine-latency", fc.EngineLatency, &cfg.EngineLatency); err != nil {
		return err
	}
	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", fc.StatusInterval, &cfg.StatusInterval); err != nil {
		return err
	}

	applyFileParams(s, cfg, fc)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

func applyFileParams(s *configSetter, cfg *Config, fc FileConfig) {
	s.setString("prompt", fc.Prompt, &cfg.Prompt)
	s.setInt64("seed", fc.Seed, &cfg.Seed)
	s.setInt("steps", fc.Steps, &cfg.Steps)
	s.setFloat("strength", fc.Strength, &cfg.Strength)
}

// ReloadParams re-reads the default ParamSet from the file at path on top of
// base. Fields in changed were pinned by flags and keep their base values.
func ReloadParams(path string, base domain.ParamSet, changed map[string]bool) (domain.ParamSet, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return base, err
	}

	cfg := Config{Prompt: base.Prompt, Seed: base.Seed, Steps: base.Steps, Strength: base.Strength}
	applyFileParams(newConfigSetter(changed), &cfg, fc)

	p := cfg.Params()
	if err := p.Validate(); err != nil {
		return base, err
	}
	return p, nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
