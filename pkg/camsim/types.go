package camsim

import (
	"context"

	"github.com/bft-labs/camsim/internal/app"
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/optics"
	"github.com/bft-labs/camsim/internal/ports"
	"github.com/bft-labs/camsim/pkg/log"
)

// Re-export types used in the public API.
type (
	FrameMetadata         = domain.FrameMetadata
	StreamFormat          = domain.StreamFormat
	VideoStreamFormat     = domain.VideoStreamFormat
	PresentInfo           = domain.PresentInfo
	VSyncMode             = domain.VSyncMode
	Eye                   = domain.Eye
	Viewport              = domain.Viewport
	Pose                  = domain.Pose
	Matrix44              = domain.Matrix44
	Intrinsics            = optics.Intrinsics
	RawProjection         = optics.RawProjection
	DistortionCoordinates = optics.DistortionCoordinates

	BlockQueue       = ports.BlockQueue
	Paths            = ports.Paths
	PropertyRegistry = ports.PropertyRegistry
	PropertyKey      = ports.PropertyKey
	TextureOpener    = ports.TextureOpener
	TextureHandle    = ports.TextureHandle
	Surface          = ports.Surface
	Window           = ports.Window
	PoseSink         = ports.PoseSink
	Clock            = ports.Clock

	FrameSink     = app.FrameSink
	ProducerStats = app.ProducerStats
	PacerStats    = app.PacerStats
)

const (
	VSyncNone         = domain.VSyncNone
	VSyncWaitRender   = domain.VSyncWaitRender
	VSyncNoWaitRender = domain.VSyncNoWaitRender

	EyeLeft  = domain.EyeLeft
	EyeRight = domain.EyeRight
)

// State is the lifecycle state of a Device.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

func convertState(s app.State) State {
	switch s {
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// FrameEvent describes a frame published on the frame channel.
type FrameEvent struct {
	Metadata FrameMetadata
}

// EventHandler receives device events. Methods are called synchronously
// from device goroutines and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnFrame(event FrameEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// a subset of events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnFrame(FrameEvent)             {}

// Plugin extends a Device with optional behaviour.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// BasePlugin implements Plugin with no-ops. Embed it and override what
// the plugin needs.
type BasePlugin struct{}

func (BasePlugin) Name() string                                   { return "base" }
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }

// PluginConfig is passed to plugins at initialization.
type PluginConfig struct {
	Device *Device
	Logger log.Logger
}

// Stats holds device counters.
type Stats struct {
	Producer ProducerStats
	Pacer    PacerStats
	Poses    uint64
}
