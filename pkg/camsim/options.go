package camsim

import (
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/pkg/log"
)

// DefaultDeviceHandle is the container handle used when none is given.
const DefaultDeviceHandle = 1

// Option configures optional behavior of a Device.
type Option func(*options)

// options holds the optional configuration for a Device.
type options struct {
	logger       log.Logger
	eventHandler EventHandler
	plugins      []Plugin
	clock        Clock
	handle       domain.ContainerHandle

	queue      BlockQueue
	paths      Paths
	properties PropertyRegistry
	textures   TextureOpener
	surface    Surface
	window     Window
	poses      PoseSink
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		handle: DefaultDeviceHandle,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for device events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the device starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithClock replaces the clock used for frame timing and vsync.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithDeviceHandle sets the container handle the device registers its
// properties and poses under.
func WithDeviceHandle(handle uint64) Option {
	return func(o *options) {
		o.handle = domain.ContainerHandle(handle)
	}
}

// WithHost sets the block queue host the frame channel is created on.
func WithHost(queue BlockQueue, paths Paths) Option {
	return func(o *options) {
		o.queue = queue
		o.paths = paths
	}
}

// WithProperties sets the registry device properties are advertised to.
func WithProperties(registry PropertyRegistry) Option {
	return func(o *options) {
		o.properties = registry
	}
}

// WithGraphics sets the texture source, output surface and window of the
// virtual display.
func WithGraphics(textures TextureOpener, surface Surface, window Window) Option {
	return func(o *options) {
		o.textures = textures
		o.surface = surface
		o.window = window
	}
}

// WithPoseSink sets the receiver of the head pose feed.
func WithPoseSink(sink PoseSink) Option {
	return func(o *options) {
		o.poses = sink
	}
}
