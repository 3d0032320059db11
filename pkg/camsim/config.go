package camsim

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/camsim/internal/app"
	"github.com/bft-labs/camsim/internal/domain"
)

// Config holds the device configuration.
type Config struct {
	// ChannelName is the frame channel created at activation.
	ChannelName string
	SlotCount   int
	HeaderSize  int

	// FrameWidth and FrameHeight are the size of one eye's image.
	FrameWidth  int
	FrameHeight int

	FramePeriod    time.Duration
	CaptureLatency time.Duration

	RefreshRate int
	LockTimeout time.Duration

	RenderWidth  int
	RenderHeight int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.ChannelName == "" {
		c.ChannelName = domain.RawFramesChannel
	}
	if c.SlotCount == 0 {
		c.SlotCount = domain.DefaultSlotCount
	}
	if c.HeaderSize == 0 {
		c.HeaderSize = domain.DefaultHeaderSize
	}
	if c.FrameWidth == 0 {
		c.FrameWidth = 1024
	}
	if c.FrameHeight == 0 {
		c.FrameHeight = 1024
	}
	if c.FramePeriod == 0 {
		c.FramePeriod = app.DefaultFramePeriod
	}
	if c.CaptureLatency == 0 {
		c.CaptureLatency = app.DefaultCaptureLatency
	}
	if c.RefreshRate == 0 {
		c.RefreshRate = app.DefaultRefreshRate
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = app.DefaultLockTimeout
	}
	if c.RenderWidth == 0 {
		c.RenderWidth = 1024
	}
	if c.RenderHeight == 0 {
		c.RenderHeight = 1024
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	switch {
	case !strings.HasPrefix(c.ChannelName, "/"):
		return fmt.Errorf("%w: channel name %q must start with /", domain.ErrInvalidConfig, c.ChannelName)
	case c.SlotCount < 1:
		return fmt.Errorf("%w: slot count %d", domain.ErrInvalidConfig, c.SlotCount)
	case c.HeaderSize < 0:
		return fmt.Errorf("%w: header size %d", domain.ErrInvalidConfig, c.HeaderSize)
	case c.FrameWidth <= 0 || c.FrameHeight <= 0:
		return fmt.Errorf("%w: frame size %dx%d", domain.ErrInvalidConfig, c.FrameWidth, c.FrameHeight)
	case c.FramePeriod <= 0:
		return fmt.Errorf("%w: frame period %v", domain.ErrInvalidConfig, c.FramePeriod)
	case c.CaptureLatency < 0:
		return fmt.Errorf("%w: capture latency %v", domain.ErrInvalidConfig, c.CaptureLatency)
	case c.RefreshRate <= 0:
		return fmt.Errorf("%w: refresh rate %d", domain.ErrInvalidConfig, c.RefreshRate)
	case c.RenderWidth <= 0 || c.RenderHeight <= 0:
		return fmt.Errorf("%w: render size %dx%d", domain.ErrInvalidConfig, c.RenderWidth, c.RenderHeight)
	}
	return nil
}

func (c Config) geometry() domain.Geometry {
	return domain.StereoGeometry(c.FrameWidth, c.FrameHeight)
}
