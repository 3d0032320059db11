package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ChannelName != domain.RawFramesChannel {
		t.Errorf("ChannelName = %v, want %v", cfg.ChannelName, domain.RawFramesChannel)
	}
	if cfg.SlotCount != 4 {
		t.Errorf("SlotCount = %v, want 4", cfg.SlotCount)
	}
	if cfg.FramePeriod != 16*time.Millisecond {
		t.Errorf("FramePeriod = %v, want 16ms", cfg.FramePeriod)
	}
	if cfg.CaptureLatency != 40*time.Millisecond {
		t.Errorf("CaptureLatency = %v, want 40ms", cfg.CaptureLatency)
	}
	if cfg.FrameRate != 60 {
		t.Errorf("FrameRate = %v, want 60", cfg.FrameRate)
	}
	if cfg.LockTimeout != 10*time.Millisecond {
		t.Errorf("LockTimeout = %v, want 10ms", cfg.LockTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative window position", func(c *Config) { c.WindowX = -1920 }, false},
		{"zero latency", func(c *Config) { c.CaptureLatency = 0 }, false},
		{"relative channel name", func(c *Config) { c.ChannelName = "raw_frames" }, true},
		{"no slots", func(c *Config) { c.SlotCount = 0 }, true},
		{"zero frame width", func(c *Config) { c.FrameWidth = 0 }, true},
		{"zero frame period", func(c *Config) { c.FramePeriod = 0 }, true},
		{"negative latency", func(c *Config) { c.CaptureLatency = -time.Millisecond }, true},
		{"zero read timeout", func(c *Config) { c.ReadTimeout = 0 }, true},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }, true},
		{"zero window height", func(c *Config) { c.WindowHeight = 0 }, true},
		{"zero render width", func(c *Config) { c.RenderWidth = 0 }, true},
		{"negative duration", func(c *Config) { c.Duration = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigSetter(t *testing.T) {
	s := newConfigSetter(map[string]bool{"width": true, "window-x": true})

	width := 1
	s.setInt("width", 5, &width)
	if width != 1 {
		t.Errorf("changed flag overwritten: width = %d", width)
	}

	height := 1
	s.setInt("height", 0, &height)
	if height != 1 {
		t.Errorf("zero value applied: height = %d", height)
	}

	x, y := 10, 10
	zero := 0
	s.setPos("window-x", &zero, &x)
	s.setPos("window-y", &zero, &y)
	if x != 10 || y != 0 {
		t.Errorf("positions = (%d, %d), want (10, 0)", x, y)
	}

	var d time.Duration
	if err := s.setDuration("frame-period", "bogus", &d); err == nil {
		t.Error("setDuration() accepted an invalid duration")
	}
	if err := s.setPosFromString("window-y", "-5", &y); err != nil || y != -5 {
		t.Errorf("setPosFromString() = %v, y = %d, want nil, -5", err, y)
	}
	if err := s.setIntFromString("height", "x", &height); err == nil {
		t.Error("setIntFromString() accepted a non-number")
	}

	var b bool
	s.setBoolFromString("snoop", "1", &b)
	if !b {
		t.Error("setBoolFromString(\"1\") = false, want true")
	}
}
