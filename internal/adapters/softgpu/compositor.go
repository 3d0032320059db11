package softgpu

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
	"github.com/bft-labs/camsim/pkg/log"
)

// syncKey is the keyed mutex value shared with the display.
const syncKey = 0

// CompositorConfig contains configuration for the compositor.
type CompositorConfig struct {
	// Width and Height are the render target size of one eye.
	Width       int
	Height      int
	RefreshRate int
	LockTimeout time.Duration
}

// Compositor renders a stereo texture on a fixed cadence and presents it to
// a virtual display, waiting for each present to finish.
type Compositor struct {
	display  ports.VirtualDisplay
	registry *Registry
	cfg      CompositorConfig
	logger   log.Logger

	frames  atomic.Uint64
	skipped atomic.Uint64
}

// NewCompositor creates a compositor presenting to display.
func NewCompositor(display ports.VirtualDisplay, registry *Registry, cfg CompositorConfig, logger log.Logger) *Compositor {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = 60
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 10 * time.Millisecond
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Compositor{display: display, registry: registry, cfg: cfg, logger: logger}
}

// Run presents frames until ctx is done. A present error ends the loop.
func (c *Compositor) Run(ctx context.Context) error {
	handle, tex, err := c.registry.Create(ports.TextureDesc{
		Width:  c.cfg.Width * 2,
		Height: c.cfg.Height,
		SRGB:   true,
	})
	if err != nil {
		return err
	}
	defer c.registry.Release(handle)

	c.logger.Info("compositor started",
		log.Handle("texture", uint64(handle)),
		log.Int("refresh_rate", c.cfg.RefreshRate),
	)

	interval := time.Second / time.Duration(c.cfg.RefreshRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("compositor stopped", log.Uint64("frames", c.frames.Load()))
			return ctx.Err()
		case <-ticker.C:
		}

		frameID := c.frames.Load() + 1
		if err := tex.AcquireSync(syncKey, c.cfg.LockTimeout); err != nil {
			c.skipped.Add(1)
			c.logger.Debug("render target busy", log.Uint64("frame", frameID))
			continue
		}
		renderEyes(tex, frameID)
		if err := tex.ReleaseSync(syncKey); err != nil {
			return fmt.Errorf("release render target: %w", err)
		}

		err := c.display.Present(domain.PresentInfo{
			Texture:            uint64(handle),
			VSync:              domain.VSyncWaitRender,
			FrameID:            frameID,
			VSyncTimeInSeconds: interval.Seconds(),
		})
		if err != nil {
			return fmt.Errorf("present frame %d: %w", frameID, err)
		}
		c.display.WaitForPresent()
		c.frames.Add(1)
	}
}

// Frames returns the number of frames presented.
func (c *Compositor) Frames() uint64 { return c.frames.Load() }

// Skipped returns the number of frames skipped because the render target
// was still held.
func (c *Compositor) Skipped() uint64 { return c.skipped.Load() }

// renderEyes draws a horizontal bar that moves one row per frame, in a
// different shade per eye.
func renderEyes(tex *Texture, frameID uint64) {
	desc := tex.Desc()
	pix := tex.Pixels()
	eyeW := desc.Width / 2
	bar := int(frameID % uint64(desc.Height))
	for y := 0; y < desc.Height; y++ {
		for x := 0; x < desc.Width; x++ {
			p := pix[(y*desc.Width+x)*4:]
			shade := byte(64)
			if x >= eyeW {
				shade = 192
			}
			if y == bar {
				shade = 255
			}
			p[0], p[1], p[2], p[3] = shade, shade, shade, 255
		}
	}
}
