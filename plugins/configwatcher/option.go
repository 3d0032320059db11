package configwatcher

import "github.com/bft-labs/camsim/pkg/camsim"

// WithConfigWatcher returns a camsim Option that enables config file
// watching. When enabled, window size changes in the display table of the
// file are applied to the running device.
//
// Usage:
//
//	d, err := camsim.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/camsim/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) camsim.Option {
	plugin := New(cfg)
	return camsim.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a camsim Option that watches the default
// config file with a 100ms debounce.
//
// Usage:
//
//	d, err := camsim.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() camsim.Option {
	return WithConfigWatcher(DefaultConfig())
}
