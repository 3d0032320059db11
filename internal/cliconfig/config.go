package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
)

// Config holds CLI configuration for camsim.
type Config struct {
	ChannelName string
	SlotCount   int
	HeaderSize  int

	FrameWidth  int
	FrameHeight int

	FramePeriod    time.Duration
	CaptureLatency time.Duration
	ReadTimeout    time.Duration
	LockTimeout    time.Duration
	FrameRate      int

	WindowX      int
	WindowY      int
	WindowWidth  int
	WindowHeight int
	RenderWidth  int
	RenderHeight int

	Snoop       bool
	Duration    time.Duration
	LogLevel    string
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ChannelName:    domain.RawFramesChannel,
		SlotCount:      domain.DefaultSlotCount,
		HeaderSize:     domain.DefaultHeaderSize,
		FrameWidth:     1024,
		FrameHeight:    1024,
		FramePeriod:    16 * time.Millisecond,
		CaptureLatency: 40 * time.Millisecond,
		ReadTimeout:    100 * time.Millisecond,
		LockTimeout:    10 * time.Millisecond,
		FrameRate:      60,
		WindowWidth:    2048,
		WindowHeight:   1024,
		RenderWidth:    1024,
		RenderHeight:   1024,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ChannelName, "/") {
		return fmt.Errorf("%w: channel name %q must start with /", domain.ErrInvalidConfig, c.ChannelName)
	}
	if c.SlotCount < 1 {
		return fmt.Errorf("%w: slot count must be at least 1", domain.ErrInvalidConfig)
	}
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("%w: frame size must be positive", domain.ErrInvalidConfig)
	}
	if c.FramePeriod <= 0 {
		return fmt.Errorf("%w: frame period must be positive", domain.ErrInvalidConfig)
	}
	if c.CaptureLatency < 0 {
		return fmt.Errorf("%w: capture latency must not be negative", domain.ErrInvalidConfig)
	}
	if c.ReadTimeout <= 0 || c.LockTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", domain.ErrInvalidConfig)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", domain.ErrInvalidConfig)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("%w: window size must be positive", domain.ErrInvalidConfig)
	}
	if c.RenderWidth <= 0 || c.RenderHeight <= 0 {
		return fmt.Errorf("%w: render size must be positive", domain.ErrInvalidConfig)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setPos sets a window coordinate from a pointer, since zero and negative
// positions are valid.
func (s *configSetter) setPos(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a positive int from an environment value.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setPosFromString parses a window coordinate from an environment value.
func (s *configSetter) setPosFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
