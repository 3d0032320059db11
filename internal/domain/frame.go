package domain

import "time"

// RawFramesChannel is the channel name the host compositor reads camera
// frames from.
const RawFramesChannel = "/lighthouse/camera/raw_frames"

// Channel layout used when the device creates the raw frames channel.
const (
	DefaultSlotCount  = 4
	DefaultHeaderSize = 512
)

// SequenceModulus bounds FrameMetadata.FrameSequence.
const SequenceModulus = 16

// Static channel field paths, written once after the channel is created.
const (
	PathFormat = "/format"
	PathWidth  = "/width"
	PathHeight = "/height"
)

// Per-block field paths, written for every published frame.
const (
	PathFrameSize          = "/frame_size"
	PathFrameSequence      = "/frame_sequence"
	PathFrameTimeMonotonic = "/frame_time_monotonic"
	PathServerTimeTicks    = "/server_time_ticks"
	PathDeliveryRate       = "/delivery_rate"
	PathElapsedTime        = "/elapsed_time"
)

// VideoStreamFormat enumerates camera pixel formats.
type VideoStreamFormat int32

const (
	FormatUnknown VideoStreamFormat = 0
	FormatRAW10   VideoStreamFormat = 1
	FormatNV12    VideoStreamFormat = 2
	FormatRGB24   VideoStreamFormat = 3
	FormatRGBX32  VideoStreamFormat = 8
)

// StreamFormat holds the static fields describing every frame in a channel.
type StreamFormat struct {
	Format VideoStreamFormat
	Width  int32
	Height int32
}

// FrameMetadata holds the per-frame fields attached to a published block.
type FrameMetadata struct {
	// FrameSize is the pixel payload size in bytes.
	FrameSize int32

	// FrameSequence cycles through [0, SequenceModulus).
	FrameSequence uint64

	// CaptureTimeMonotonic is the simulated capture time in seconds, already
	// shifted back by the capture latency.
	CaptureTimeMonotonic float64

	// ServerTimeTicks is the latency-shifted capture time in clock ticks.
	ServerTimeTicks uint64

	// DeliveryRate is the seconds elapsed between this frame's and the
	// previous frame's latency-shifted capture times.
	DeliveryRate float64

	// ElapsedTime is the seconds since the stream was last started.
	ElapsedTime float64
}

// Geometry describes the layout of a side-by-side stereo frame texture.
type Geometry struct {
	Width         int
	Height        int
	BytesPerPixel int
}

// StereoGeometry returns the texture geometry for two eyes of the given
// per-eye size placed horizontally.
func StereoGeometry(eyeWidth, eyeHeight int) Geometry {
	return Geometry{Width: eyeWidth * 2, Height: eyeHeight, BytesPerPixel: 4}
}

// FrameSize returns the pixel payload size in bytes.
func (g Geometry) FrameSize() int {
	return g.Width * g.Height * g.BytesPerPixel
}

// EyeWidth returns the width of a single eye's image.
func (g Geometry) EyeWidth() int {
	return g.Width / 2
}

// PacerSnapshot is the virtual vsync clock published by the pacer.
type PacerSnapshot struct {
	LastVsync    time.Time
	FrameCount   uint64
	HasVsyncTime bool
}
