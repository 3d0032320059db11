package camsim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/bft-labs/camsim/internal/adapters/memqueue"
	"github.com/bft-labs/camsim/internal/adapters/props"
	"github.com/bft-labs/camsim/internal/adapters/softgpu"
	"github.com/bft-labs/camsim/internal/app"
	"github.com/bft-labs/camsim/internal/channel"
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/optics"
	"github.com/bft-labs/camsim/pkg/log"
)

// Device is a simulated stereo camera headset that can be embedded in other
// applications. It publishes synthetic frames on a host frame channel and
// presents submitted textures on a virtual display.
// Use New() to create an instance, then Start() to activate it.
type Device struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	emitter   *eventEmitterWrapper
	logger    log.Logger
	clock     Clock
	handle    domain.ContainerHandle

	client  *channel.Client
	props   PropertyRegistry
	camera  optics.Camera
	display optics.Display

	sessionID uuid.UUID
	serial    string
	plugins   []Plugin

	mu       sync.RWMutex
	ch       *channel.Channel
	producer *app.Producer
	pacer    *app.Pacer

	sinkMu sync.RWMutex
	sink   FrameSink

	poses atomic.Uint64
}

// New creates a new Device with the given configuration.
// The device is created in StateStopped; call Start() to activate it.
// Collaborators not set through options are replaced with in-process
// implementations.
func New(cfg Config, opts ...Option) (*Device, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.clock == nil {
		o.clock = app.SystemClock()
	}
	if o.queue == nil || o.paths == nil {
		host := memqueue.New()
		o.queue, o.paths = host, host
	}
	if o.properties == nil {
		o.properties = props.New()
	}
	if o.textures == nil || o.surface == nil || o.window == nil {
		o.textures = softgpu.NewRegistry()
		o.surface = softgpu.NewSurface()
		o.window = softgpu.NewWindow(0, 0, 2*cfg.RenderWidth, cfg.RenderHeight)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	sessionID := uuid.New()

	return &Device{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		emitter:   emitter,
		logger:    o.logger,
		clock:     o.clock,
		handle:    o.handle,
		client:    channel.NewClient(o.queue, o.paths, o.logger),
		props:     o.properties,
		camera:    optics.NewCamera(cfg.FrameWidth, cfg.FrameHeight),
		display:   optics.Display{RenderWidth: cfg.RenderWidth, RenderHeight: cfg.RenderHeight},
		sessionID: sessionID,
		serial:    "camsim-" + sessionID.String()[:8],
		plugins:   o.plugins,
	}, nil
}

// Start activates the device: it advertises properties, creates the frame
// channel, prepares the display and starts the pose feed.
// The video stream itself is started with StartVideoStream.
// Returns ErrAlreadyRunning if the device is active.
func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := d.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.lifecycle.SetCancel(cancel)

	failed := d.advertise(cameraProperties(d.camera))
	failed += d.advertise(displayProperties(d.serial))
	left, right := EyeToHeadTransforms()
	d.logger.Info("device properties advertised",
		log.Handle("device", uint64(d.handle)),
		log.String("serial", d.serial),
		log.Int("failed", failed),
		log.Any("eye_to_head", [2]domain.Matrix34{left, right}),
	)

	ch, err := d.openChannel()
	if err != nil {
		d.logger.Error("frame channel setup failed",
			log.String("channel", d.config.ChannelName),
			log.Err(err),
		)
		d.abort("channel setup failed")
		return err
	}

	pacer, err := app.NewPacer(d.opts.textures, d.opts.surface, d.opts.window, d.clock, app.PacerConfig{
		RefreshRate: d.config.RefreshRate,
		LockTimeout: d.config.LockTimeout,
	}, d.logger)
	if err != nil {
		d.logger.Error("display setup failed", log.Err(err))
		_ = ch.Destroy()
		d.abort("display setup failed")
		return err
	}

	producer := app.NewProducer(ch, app.ProducerConfig{
		Geometry:       d.config.geometry(),
		Period:         d.config.FramePeriod,
		CaptureLatency: d.config.CaptureLatency,
	}, d.clock, d.logger)
	producer.SetSink(d.onFrame)

	d.ch, d.pacer, d.producer = ch, pacer, producer

	pluginCfg := PluginConfig{Device: d, Logger: d.logger}
	for i, p := range d.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			d.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			d.shutdownPlugins(d.plugins[:i])
			d.teardown()
			d.abort("plugin init failed: " + p.Name())
			return err
		}
		d.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	d.lifecycle.Go(func() {
		d.runPoses(runCtx, func() uint64 { return pacer.Snapshot().FrameCount })
	})

	return d.lifecycle.TransitionTo(app.StateRunning, "device activated")
}

// Stop deactivates the device. The video stream and pose feed are stopped,
// plugins are shut down in reverse order and the frame channel is destroyed.
// Returns nil on graceful shutdown, ErrShutdownTimeout if workers did not
// exit in time.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := d.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	d.lifecycle.Cancel()
	if d.producer != nil {
		d.producer.Stop()
	}
	err := d.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	d.shutdownPlugins(d.plugins)
	d.teardown()

	if err != nil {
		_ = d.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = d.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (d *Device) Status() State {
	return convertState(d.lifecycle.State())
}

// Stats returns the device counters. Producer and pacer counters are zero
// while the device is inactive.
func (d *Device) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Stats{Poses: d.poses.Load()}
	if d.producer != nil {
		s.Producer = d.producer.Stats()
	}
	if d.pacer != nil {
		s.Pacer = d.pacer.Stats()
	}
	return s
}

// SessionID identifies this device instance.
func (d *Device) SessionID() string { return d.sessionID.String() }

// SerialNumber is the serial advertised at activation.
func (d *Device) SerialNumber() string { return d.serial }

// Handle is the container the device registers properties and poses under.
func (d *Device) Handle() uint64 { return uint64(d.handle) }

// HandleEvent logs host events in the camera range.
func (d *Device) HandleEvent(eventType uint32) {
	if eventType >= 1500 && eventType < 1600 {
		d.logger.Info("camera event", log.Uint32("type", eventType))
	}
}

// EnterStandby is called by the host when the headset enters standby.
func (d *Device) EnterStandby() {
	d.logger.Info("enter standby")
}

// DebugRequest answers a host debug request. The device has none.
func (d *Device) DebugRequest(request string) string {
	d.logger.Debug("debug request", log.String("request", request))
	return ""
}

// openChannel creates the frame channel and writes its stream format.
func (d *Device) openChannel() (*channel.Channel, error) {
	g := d.config.geometry()
	ch, err := d.client.Create(d.config.ChannelName, channel.Layout{
		BlockDataSize:   uint32(g.FrameSize()),
		BlockHeaderSize: uint32(d.config.HeaderSize),
		SlotCount:       uint32(d.config.SlotCount),
	})
	if err != nil {
		return nil, err
	}

	if err := channel.WriteStreamFormat(ch, d.StreamFormat()); err != nil {
		if derr := ch.Destroy(); derr != nil {
			err = errors.Join(err, derr)
		}
		return nil, fmt.Errorf("write stream format: %w", err)
	}
	return ch, nil
}

// teardown stops the video stream and drops the per-activation components.
func (d *Device) teardown() {
	if d.producer != nil {
		d.producer.Stop()
	}
	if d.ch != nil {
		if err := d.ch.Destroy(); err != nil {
			d.logger.Warn("frame channel destroy failed", log.Err(err))
		}
	}
	d.ch, d.pacer, d.producer = nil, nil, nil
}

func (d *Device) abort(reason string) {
	d.lifecycle.Cancel()
	_ = d.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	_ = d.lifecycle.TransitionTo(app.StateCrashed, reason)
}

func (d *Device) shutdownPlugins(plugins []Plugin) {
	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()

	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			d.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			d.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

func (d *Device) onFrame(m FrameMetadata) {
	d.sinkMu.RLock()
	sink := d.sink
	d.sinkMu.RUnlock()

	if sink != nil {
		sink(m)
	}
	d.emitter.OnFrame(m)
}

func (d *Device) activeProducer() (*app.Producer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.producer == nil {
		return nil, domain.ErrNotRunning
	}
	return d.producer, nil
}

func (d *Device) activePacer() (*app.Pacer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pacer == nil {
		return nil, domain.ErrNotRunning
	}
	return d.pacer, nil
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnFrame(m FrameMetadata) {
	if e.handler == nil {
		return
	}
	e.handler.OnFrame(FrameEvent{Metadata: m})
}

