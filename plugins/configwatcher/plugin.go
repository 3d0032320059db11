// Package configwatcher provides config file monitoring for camsim.
// When enabled, it watches the config file for changes to the display table
// and resizes the device window to match.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/camsim/internal/cliconfig"
	"github.com/bft-labs/camsim/pkg/camsim"
	"github.com/bft-labs/camsim/pkg/log"
)

// Resizer changes the size of the display window.
type Resizer interface {
	ResizeWindow(width, height int) error
}

// Plugin implements config watching functionality.
// It monitors one TOML file and applies window size changes from its
// display table.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	target   Resizer
	logger   log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	width    int
	height   int

	reloads atomic.Uint64
	applied atomic.Uint64
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig watches the default config file path.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the config watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg camsim.PluginConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	p.mu.Lock()
	p.logger = logger
	if cfg.Device != nil {
		p.target = cfg.Device
	}
	p.mu.Unlock()

	if p.path == "" || p.target == nil {
		logger.Warn("config watcher disabled: no config path or device")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	logger.Info("config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns the number of times the file was read after a change.
func (p *Plugin) Reloads() uint64 { return p.reloads.Load() }

// Applied returns the number of window resizes applied.
func (p *Plugin) Applied() uint64 { return p.applied.Load() }

// watchLoop watches for config file changes.
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
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload reads the display table and resizes the window when its size
// changed. Zero sizes leave the window alone.
func (p *Plugin) reload() {
	p.reloads.Add(1)

	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("config reload failed", log.String("path", p.path), log.Err(err))
		return
	}
	w, h := fc.Display.WindowWidth, fc.Display.WindowHeight
	if w <= 0 || h <= 0 {
		return
	}

	p.mu.Lock()
	same := w == p.width && h == p.height
	p.width, p.height = w, h
	target := p.target
	p.mu.Unlock()
	if same {
		return
	}

	if err := target.ResizeWindow(w, h); err != nil {
		p.logger.Warn("window resize from config failed",
			log.Int("width", w),
			log.Int("height", h),
			log.Err(err),
		)
		return
	}
	p.applied.Add(1)
}

// Ensure Plugin implements camsim.Plugin.
var _ camsim.Plugin = (*Plugin)(nil)
