package camsim

import (
	"fmt"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/pkg/log"
)

// StartVideoStream starts publishing frames. Starting clears a previous
// pause. Calling it while the stream runs is a no-op.
func (d *Device) StartVideoStream() error {
	p, err := d.activeProducer()
	if err != nil {
		return err
	}
	p.Start()
	return nil
}

// StopVideoStream stops publishing frames.
func (d *Device) StopVideoStream() error {
	p, err := d.activeProducer()
	if err != nil {
		return err
	}
	p.Stop()
	return nil
}

// PauseVideoStream suspends publishing without stopping the stream.
func (d *Device) PauseVideoStream() error {
	p, err := d.activeProducer()
	if err != nil {
		return err
	}
	p.Pause()
	return nil
}

// ResumeVideoStream resumes a paused stream.
func (d *Device) ResumeVideoStream() error {
	p, err := d.activeProducer()
	if err != nil {
		return err
	}
	p.Resume()
	return nil
}

// IsVideoStreamActive reports whether the stream is running and paused, and
// how long it has been running since the last start.
func (d *Device) IsVideoStreamActive() (active, paused bool, elapsed time.Duration) {
	p, err := d.activeProducer()
	if err != nil {
		return false, false, 0
	}
	s := p.Status()
	return s.Active, s.Paused, s.Elapsed
}

// FrameBufferingRequirements returns the default number of frame buffers
// and the size of one frame in bytes.
func (d *Device) FrameBufferingRequirements() (count, frameSize int) {
	return domain.DefaultSlotCount, d.config.geometry().FrameSize()
}

// SetFrameBuffering accepts the client's buffer allocation. The channel owns
// its own slots so the buffers are only validated.
func (d *Device) SetFrameBuffering(count, bufferSize int) error {
	if count < 1 {
		return fmt.Errorf("%w: frame buffer count %d", domain.ErrInvalidConfig, count)
	}
	d.logger.Debug("frame buffering set",
		log.Int("count", count),
		log.Int("buffer_size", bufferSize),
	)
	return nil
}

// StreamFormat returns the pixel format and texture size of published
// frames.
func (d *Device) StreamFormat() StreamFormat {
	g := d.config.geometry()
	return StreamFormat{
		Format: domain.FormatRGBX32,
		Width:  int32(g.Width),
		Height: int32(g.Height),
	}
}

// FrameDimensions returns the size of the side by side frame texture.
func (d *Device) FrameDimensions() (width, height int) {
	g := d.config.geometry()
	return g.Width, g.Height
}

// FrameBounds returns the region of the frame texture holding both eyes.
func (d *Device) FrameBounds() Viewport {
	w, h := d.FrameDimensions()
	return Viewport{Width: w, Height: h}
}

// Intrinsics returns the lens model of camera index.
func (d *Device) Intrinsics(index uint32) Intrinsics {
	return d.camera.Intrinsics(index)
}

// Distortion maps undistorted normalized coordinates of camera index to
// the distorted image.
func (d *Device) Distortion(index uint32, u, v float64) (float64, float64) {
	return d.camera.Distort(index, u, v)
}

// Projection returns the projection matrix of camera index.
func (d *Device) Projection(index uint32, near, far float32) Matrix44 {
	return d.camera.Projection(index, near, far)
}

// SetFrameSink registers fn to observe every published frame. Pass nil to
// remove it.
func (d *Device) SetFrameSink(fn FrameSink) {
	d.sinkMu.Lock()
	d.sink = fn
	d.sinkMu.Unlock()
}
