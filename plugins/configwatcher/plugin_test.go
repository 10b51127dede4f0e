package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/drawstream/internal/adapters/log"
	"github.com/bft-labs/drawstream/pkg/drawstream"
)

// paramStore stands in for a Server's default params.
type paramStore struct {
	mu sync.Mutex
	p  drawstream.ParamSet
}

func (s *paramStore) get() drawstream.ParamSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

func (s *paramStore) set(p drawstream.ParamSet) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = p
	return nil
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}
}

func startPlugin(t *testing.T, cfg Config, path string, store *paramStore) *Plugin {
	t.Helper()

	p := New(cfg)
	err := p.Initialize(context.Background(), drawstream.PluginConfig{
		ConfigPath:       path,
		Logger:           log.NewNoopLogger(),
		DefaultParams:    store.get,
		SetDefaultParams: store.set,
	})
	if err != nil {
		t.Fatalf("Initialize() = %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPlugin_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "prompt = \"pencil\"\n")

	store := &paramStore{p: drawstream.DefaultParams()}
	p := startPlugin(t, Config{DebounceDelay: 10 * time.Millisecond}, path, store)

	writeConfig(t, path, "prompt = \"ink wash\"\nsteps = 3\nstrength = 0.5\n")

	waitFor(t, func() bool {
		got := store.get()
		return got.Prompt == "ink wash" && got.Steps == 3 && got.Strength == 0.5
	})

	got := store.get()
	if p.Reloads() < 1 {
		t.Errorf("Reloads() = %d, want at least 1", p.Reloads())
	}
	if got.Seed != drawstream.DefaultParams().Seed {
		t.Errorf("Seed = %d, want unchanged default", got.Seed)
	}
}

func TestPlugin_PinnedFieldsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "")

	start := drawstream.DefaultParams()
	start.Prompt = "from flag"
	store := &paramStore{p: start}
	p := startPlugin(t, Config{
		DebounceDelay: 10 * time.Millisecond,
		Pinned:        map[string]bool{"prompt": true},
	}, path, store)

	writeConfig(t, path, "prompt = \"from file\"\nsteps = 2\n")

	waitFor(t, func() bool { return store.get().Steps == 2 })

	if got := store.get(); got.Prompt != "from flag" {
		t.Errorf("Prompt = %q, want pinned value", got.Prompt)
	}
	if p.Reloads() < 1 {
		t.Errorf("Reloads() = %d, want at least 1", p.Reloads())
	}
}

func TestPlugin_InvalidFileKeepsParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "")

	store := &paramStore{p: drawstream.DefaultParams()}
	p := startPlugin(t, Config{DebounceDelay: 10 * time.Millisecond}, path, store)

	writeConfig(t, path, "strength = 3.0\n")
	time.Sleep(200 * time.Millisecond)

	if p.Reloads() != 0 {
		t.Errorf("Reloads() = %d, want 0", p.Reloads())
	}
	if got := store.get(); got != drawstream.DefaultParams() {
		t.Errorf("params changed to %+v", got)
	}

	writeConfig(t, path, "steps = [")
	time.Sleep(200 * time.Millisecond)
	if p.Reloads() != 0 {
		t.Errorf("Reloads() = %d after malformed file, want 0", p.Reloads())
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, "")

	store := &paramStore{p: drawstream.DefaultParams()}
	p := startPlugin(t, Config{DebounceDelay: 10 * time.Millisecond}, path, store)

	writeConfig(t, filepath.Join(dir, "other.toml"), "steps = 4\n")
	time.Sleep(200 * time.Millisecond)

	if p.Reloads() != 0 {
		t.Errorf("Reloads() = %d, want 0", p.Reloads())
	}
}

func TestPlugin_NoPathIsNoop(t *testing.T) {
	store := &paramStore{p: drawstream.DefaultParams()}
	p := New(DefaultConfig())
	err := p.Initialize(context.Background(), drawstream.PluginConfig{
		Logger:           log.NewNoopLogger(),
		DefaultParams:    store.get,
		SetDefaultParams: store.set,
	})
	if err != nil {
		t.Fatalf("Initialize() = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func TestPlugin_MissingDirectory(t *testing.T) {
	p := New(DefaultConfig())
	err := p.Initialize(context.Background(), drawstream.PluginConfig{
		ConfigPath: filepath.Join(t.TempDir(), "missing", "config.toml"),
		Logger:     log.NewNoopLogger(),
	})
	if err == nil {
		t.Error("Initialize() with missing directory succeeded")
	}
}

func TestWithConfigWatcher_WiresIntoServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "")

	cfg := drawstream.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.ConfigPath = path

	s, err := drawstream.New(cfg, WithConfigWatcher(Config{DebounceDelay: 10 * time.Millisecond}))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer s.Stop()

	writeConfig(t, path, "prompt = \"reloaded\"\n")
	waitFor(t, func() bool { return s.DefaultParams().Prompt == "reloaded" })
}
