// Package configwatcher reloads the default transform parameters when the
// drawstream configuration file changes. Sessions that are already open keep
// their parameters; new sessions and later param updates pick up the new
// defaults.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/drawstream/internal/cliconfig"
	"github.com/bft-labs/drawstream/internal/ports"
	"github.com/bft-labs/drawstream/pkg/drawstream"
)

// Plugin watches the configuration file and applies its params section.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	pinned        map[string]bool

	path     string
	logger   drawstream.Logger
	current  func() drawstream.ParamSet
	apply    func(drawstream.ParamSet) error
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	stopped  bool
	reloads  int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Pinned lists command-line flag names (e.g. "prompt", "steps") whose
	// values must not be overridden by the file.
	Pinned map[string]bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 100 * time.Millisecond}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		pinned:        cfg.Pinned,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching cfg.ConfigPath. It is a no-op without a path.
func (p *Plugin) Initialize(ctx context.Context, cfg drawstream.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.logger = cfg.Logger
	p.current = cfg.DefaultParams
	p.apply = cfg.SetDefaultParams
	p.stopped = false
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	p.stopped = true
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns how many times new defaults were applied.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", ports.Err(err))
		}
	}
}

func (p *Plugin) debounceReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, p.reload)
}

func (p *Plugin) reload() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	path, current, apply := p.path, p.current, p.apply
	p.mu.Unlock()

	base := current()
	next, err := cliconfig.ReloadParams(path, base, p.pinned)
	if err != nil {
		p.logger.Warn("config reload rejected, keeping current params",
			ports.String("path", path),
			ports.Err(err))
		return
	}
	if next == base {
		return
	}
	if err := apply(next); err != nil {
		p.logger.Warn("config reload rejected, keeping current params", ports.Err(err))
		return
	}

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()

	p.logger.Info("default params reloaded",
		ports.String("prompt", next.Prompt),
		ports.Int("steps", next.Steps),
		ports.Float64("strength", next.Strength))
}

var _ drawstream.Plugin = (*Plugin)(nil)
