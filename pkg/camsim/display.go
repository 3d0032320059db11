package camsim

import (
	"fmt"

	"github.com/bft-labs/camsim/pkg/log"
)

// Present composites the submitted texture into the display output.
// A texture that cannot be opened is an error; a frame whose texture lock
// times out is dropped silently.
func (d *Device) Present(info PresentInfo) error {
	p, err := d.activePacer()
	if err != nil {
		return err
	}
	return p.Submit(TextureHandle(info.Texture), info.VSync == VSyncWaitRender)
}

// WaitForPresent flips the output and advances the virtual vsync clock.
func (d *Device) WaitForPresent() {
	p, err := d.activePacer()
	if err != nil {
		return
	}
	p.FinishAndWait()
}

// TimeSinceLastVsync returns the seconds since the last virtual vsync and
// the vsync counter.
func (d *Device) TimeSinceLastVsync() (float64, uint64, error) {
	p, err := d.activePacer()
	if err != nil {
		return 0, 0, err
	}
	secs, frames := p.TimeSinceLastVsync()
	return secs, frames, nil
}

// RecommendedRenderTargetSize returns the per-eye render size.
func (d *Device) RecommendedRenderTargetSize() (width, height int) {
	return d.display.RenderWidth, d.display.RenderHeight
}

// EyeOutputViewport returns the output rectangle of eye.
func (d *Device) EyeOutputViewport(eye Eye) Viewport {
	return d.display.EyeViewport(eye)
}

// WindowBounds returns the desktop rectangle of the display window.
func (d *Device) WindowBounds() Viewport {
	return d.display.WindowBounds()
}

// ProjectionRaw returns the tangent-space frustum of eye.
func (d *Device) ProjectionRaw(eye Eye) RawProjection {
	return d.display.ProjectionRaw(eye)
}

// ComputeDistortion returns the lens-corrected coordinates of (u, v).
func (d *Device) ComputeDistortion(eye Eye, u, v float32) DistortionCoordinates {
	return d.display.ComputeDistortion(eye, u, v)
}

// IsDisplayOnDesktop reports false: the output window is not a desktop
// monitor.
func (d *Device) IsDisplayOnDesktop() bool { return false }

// IsDisplayRealDisplay reports false.
func (d *Device) IsDisplayRealDisplay() bool { return false }

// ResizeWindow changes the output window size. The output surface follows
// on the next presented frame. Safe to call from any goroutine, including
// plugins during Start and Stop.
func (d *Device) ResizeWindow(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize window to %dx%d: invalid size", width, height)
	}
	if err := d.opts.window.Resize(width, height); err != nil {
		return fmt.Errorf("resize window: %w", err)
	}
	d.logger.Info("display window resized",
		log.Int("width", width),
		log.Int("height", height),
	)
	return nil
}
