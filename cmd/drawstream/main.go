package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/drawstream/internal/adapters/engine"
	logAdapter "github.com/bft-labs/drawstream/internal/adapters/log"
	"github.com/bft-labs/drawstream/internal/cliconfig"
	"github.com/bft-labs/drawstream/internal/ui"
	"github.com/bft-labs/drawstream/pkg/drawstream"
	"github.com/bft-labs/drawstream/plugins/configwatcher"
)

const helpBanner = `
     _                              _                            
  __| |_ __ __ ___      _____ _____| |_ _ __ ___  __ _ _ __ ___  
 / _' | '__/ _' \ \ /\ / / __|_   _| __| '__/ _ \/ _' | '_ ' _ \ 
| (_| | | | (_| |\ V  V /\__ \ | | | |_| | |  __/ (_| | | | | | |
 \__,_|_|  \__,_| \_/\_/ |___/ |_|  \__|_|  \___|\__,_|_| |_| |_|
`

const helpDescription = `
Stream a live drawing canvas through an image-to-image model and paint the
result back, frame by frame.

Highlights:
  - One persistent WebSocket per client; 512x512 RGBA frames in, frames out.
  - Latest-wins per connection: a slow model never builds a backlog.
  - One transform at a time across all clients, so a single GPU is enough.
  - Graceful shutdown: stop accepting, finish in-flight work, then close.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  drawstream --listen :8079 --prompt "charcoal sketch"
  drawstream --engine remote --engine-url http://gpu-box:9000 --engine-auth-key <key>
  drawstream --config $HOME/.drawstream/config.toml --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "drawstream",
		Short:   "Stream a drawing canvas through an image-to-image model over WebSocket",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// File first, then environment, then flags.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log = cliconfig.LoggerWithLevel(cfg.LogLevel)

			logCfg := cfg
			if len(logCfg.EngineAuthKey) > 0 {
				logCfg.EngineAuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			logger := logAdapter.NewZerologAdapterWithLogger(log)

			eng, err := engine.New(engine.Config{
				Kind:    cfg.EngineKind,
				URL:     cfg.EngineURL,
				AuthKey: cfg.EngineAuthKey,
				Timeout: cfg.EngineTimeout,
				Latency: cfg.EngineLatency,
			}, &http.Client{}, logger)
			if err != nil {
				return fmt.Errorf("create engine: %w", err)
			}

			libCfg := drawstream.Config{
				ListenAddr:      cfg.ListenAddr,
				StreamPath:      cfg.StreamPath,
				PollInterval:    cfg.PollInterval,
				ShutdownTimeout: cfg.ShutdownTimeout,
				StatusDir:       cfg.StatusDir,
				StatusInterval:  cfg.StatusInterval,
				Params:          cfg.Params(),
			}

			opts := []drawstream.Option{
				drawstream.WithLogger(logger),
				drawstream.WithEngine(eng),
			}
			if cfg.WatchConfig {
				if haveFile {
					libCfg.ConfigPath = cfgFile
					opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
						Pinned: cliconfig.PinnedParams(changed),
					}))
				} else {
					log.Warn().Str("path", cfgFile).Msg("watch-config set but no config file found")
				}
			}

			s, err := drawstream.New(libCfg, opts...)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := s.Start(ctx); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			var uiServer *ui.Server
			if cfg.UIAddr != "" {
				h := ui.NewHandler(s.Stats, s.StreamURL, cfg.UIDir, logger)
				uiServer = ui.NewServer(cfg.UIAddr, h, logger)
				if err := uiServer.Start(); err != nil {
					_ = s.Stop()
					return fmt.Errorf("start ui: %w", err)
				}
			}

			crashed := make(chan struct{})
			go func() {
				ticker := time.NewTicker(500 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if s.Status() == drawstream.StateCrashed {
							close(crashed)
							return
						}
					}
				}
			}()

			select {
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
				s.RaiseShutdown()
			case <-crashed:
				log.Error().Msg("drawstream crashed")
			}

			if uiServer != nil {
				uiCtx, uiCancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = uiServer.Shutdown(uiCtx)
				uiCancel()
			}

			if s.Status() == drawstream.StateCrashed {
				return fmt.Errorf("server crashed")
			}
			if err := s.Stop(); err != nil {
				return fmt.Errorf("stop server: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.drawstream/config.toml)")

	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "stream endpoint address")
	root.Flags().StringVar(&cfg.StreamPath, "path", cfg.StreamPath, "HTTP path accepting WebSocket upgrades")
	root.Flags().StringVar(&cfg.UIAddr, "ui-listen", cfg.UIAddr, "web UI and status address (empty disables)")
	root.Flags().StringVar(&cfg.UIDir, "ui-dir", cfg.UIDir, "serve UI assets from this directory instead of the built-in page")

	root.Flags().StringVar(&cfg.EngineKind, "engine", cfg.EngineKind, "transform engine: local or remote")
	root.Flags().StringVar(&cfg.EngineURL, "engine-url", cfg.EngineURL, "base URL of the remote inference service")
	root.Flags().StringVar(&cfg.EngineAuthKey, "engine-auth-key", cfg.EngineAuthKey, "bearer token for the remote inference service")
	root.Flags().DurationVar(&cfg.EngineTimeout, "engine-timeout", cfg.EngineTimeout, "timeout for one remote transform")
	root.Flags().DurationVar(&cfg.EngineLatency, "engine-latency", cfg.EngineLatency, "artificial delay per local transform (testing)")
	if err := root.Flags().MarkHidden("engine-latency"); err != nil {
		log.Info().Err(err).Msg("failed to hide engine-latency flag")
	}

	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "worker idle poll interval")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long to wait for open connections before closing them")

	root.Flags().StringVar(&cfg.StatusDir, "status-dir", cfg.StatusDir, "directory for status.json (empty disables)")
	root.Flags().DurationVar(&cfg.StatusInterval, "status-interval", cfg.StatusInterval, "status.json write interval")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.Flags().StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "default prompt")
	root.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "default seed")
	root.Flags().IntVar(&cfg.Steps, "steps", cfg.Steps, "default inference steps")
	root.Flags().Float64Var(&cfg.Strength, "strength", cfg.Strength, "default transform strength in [0, 1]")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload default params when the config file changes")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("drawstream")
		os.Exit(1)
	}
}
