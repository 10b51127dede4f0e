package configwatcher

import "github.com/bft-labs/drawstream/pkg/drawstream"

// WithConfigWatcher returns a drawstream Option that reloads default params
// whenever Config.ConfigPath changes on disk.
//
// Usage:
//
//	s, err := drawstream.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	        Pinned:        map[string]bool{"prompt": true},
//	    }),
//	)
func WithConfigWatcher(cfg Config) drawstream.Option {
	return drawstream.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher returns a drawstream Option that enables config
// watching with default settings (debounce 100ms, nothing pinned).
func WithDefaultConfigWatcher() drawstream.Option {
	return WithConfigWatcher(DefaultConfig())
}
