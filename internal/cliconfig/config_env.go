package cliconfig

import (
	"os"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "CAMSIM_"

// ApplyEnvConfig applies configuration from environment variables (CAMSIM_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("channel", env("CHANNEL"), &cfg.ChannelName)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	durations := []struct {
		flag, name string
		dst        *time.Duration
	}{
		{"frame-period", "FRAME_PERIOD", &cfg.FramePeriod},
		{"capture-latency", "CAPTURE_LATENCY", &cfg.CaptureLatency},
		{"read-timeout", "READ_TIMEOUT", &cfg.ReadTimeout},
		{"lock-timeout", "LOCK_TIMEOUT", &cfg.LockTimeout},
		{"duration", "DURATION", &cfg.Duration},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, env(d.name), d.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		flag, name string
		dst        *int
	}{
		{"slots", "SLOTS", &cfg.SlotCount},
		{"header-size", "HEADER_SIZE", &cfg.HeaderSize},
		{"width", "WIDTH", &cfg.FrameWidth},
		{"height", "HEIGHT", &cfg.FrameHeight},
		{"frame-rate", "FRAME_RATE", &cfg.FrameRate},
		{"window-width", "WINDOW_WIDTH", &cfg.WindowWidth},
		{"window-height", "WINDOW_HEIGHT", &cfg.WindowHeight},
		{"render-width", "RENDER_WIDTH", &cfg.RenderWidth},
		{"render-height", "RENDER_HEIGHT", &cfg.RenderHeight},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, env(i.name), i.dst); err != nil {
			return err
		}
	}

	if err := s.setPosFromString("window-x", env("WINDOW_X"), &cfg.WindowX); err != nil {
		return err
	}
	if err := s.setPosFromString("window-y", env("WINDOW_Y"), &cfg.WindowY); err != nil {
		return err
	}

	s.setBoolFromString("snoop", env("SNOOP"), &cfg.Snoop)
	s.setBoolFromString("watch-config", env("WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
