package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (DRAWSTREAM_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", os.Getenv("DRAWSTREAM_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("path", os.Getenv("DRAWSTREAM_STREAM_PATH"), &cfg.StreamPath)
	s.setString("ui-listen", os.Getenv("DRAWSTREAM_UI_ADDR"), &cfg.UIAddr)
	s.setString("ui-dir", os.Getenv("DRAWSTREAM_UI_DIR"), &cfg.UIDir)
	s.setString("engine", os.Getenv("DRAWSTREAM_ENGINE"), &cfg.EngineKind)
	s.setString("engine-url", os.Getenv("DRAWSTREAM_ENGINE_URL"), &cfg.EngineURL)
	s.setString("engine-auth-key", os.Getenv("DRAWSTREAM_ENGINE_AUTH_KEY"), &cfg.EngineAuthKey)
	s.setString("status-dir", os.Getenv("DRAWSTREAM_STATUS_DIR"), &cfg.StatusDir)
	s.setString("log-level", os.Getenv("DRAWSTREAM_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("prompt", os.Getenv("DRAWSTREAM_PROMPT"), &cfg.Prompt)

	if err := s.setDuration("engine-timeout", os.Getenv("DRAWSTREAM_ENGINE_TIMEOUT"), &cfg.EngineTimeout); err != nil {
		return err
	}
	if err := s.setDuration("engine-latency", os.Getenv("DRAWSTREAM_ENGINE_LATENCY"), &cfg.EngineLatency); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("DRAWSTREAM_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("DRAWSTREAM_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", os.Getenv("DRAWSTREAM_STATUS_INTERVAL"), &cfg.StatusInterval); err != nil {
		return err
	}

	if err := s.setInt64FromString("seed", os.Getenv("DRAWSTREAM_SEED"), &cfg.Seed); err != nil {
		return err
	}
	if err := s.setIntFromString("steps", os.Getenv("DRAWSTREAM_STEPS"), &cfg.Steps); err != nil {
		return err
	}
	if err := s.setFloatFromString("strength", os.Getenv("DRAWSTREAM_STRENGTH"), &cfg.Strength); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("DRAWSTREAM_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}

var paramEnv = map[string]string{
	"prompt":   "DRAWSTREAM_PROMPT",
	"seed":     "DRAWSTREAM_SEED",
	"steps":    "DRAWSTREAM_STEPS",
	"strength": "DRAWSTREAM_STRENGTH",
}

// PinnedParams returns the param flag names a config file reload must not
// override: those set on the command line or through the environment.
func PinnedParams(changed map[string]bool) map[string]bool {
	pinned := make(map[string]bool, len(paramEnv))
	for flag, env := range paramEnv {
		if changed[flag] || os.Getenv(env) != "" {
			pinned[flag] = true
		}
	}
	return pinned
}
