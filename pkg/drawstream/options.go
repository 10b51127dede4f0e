package drawstream

import "github.com/bft-labs/drawstream/internal/adapters/log"

// Option configures optional behavior of a Server.
type Option func(*options)

// options holds the optional configuration for a Server.
type options struct {
	logger       Logger
	engine       TransformEngine
	eventHandler EventHandler
	plugins      []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEngine sets the transform engine.
// If not provided, the CPU demo engine is used.
func WithEngine(engine TransformEngine) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithEventHandler sets a handler for server events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the Server starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
