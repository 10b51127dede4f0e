package drawstream

import "context"

// Plugin extends a Server with optional behavior.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called from Start. ctx is cancelled on Stop.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called from Stop.
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin can see and change on its Server.
type PluginConfig struct {
	// ConfigPath is the configuration file the server was built from, if any.
	ConfigPath string

	// Logger is the server's logger.
	Logger Logger

	// DefaultParams returns the current default ParamSet.
	DefaultParams func() ParamSet

	// SetDefaultParams replaces the default ParamSet for new sessions and
	// omitted control fields.
	SetDefaultParams func(ParamSet) error
}
