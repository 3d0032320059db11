package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// DisplaySection is the TOML table holding the virtual display settings.
const DisplaySection = "openvr_camera_sim_display"

// DisplaySettings is the virtual display table of the config file.
// Window positions are pointers because zero is a valid value.
type DisplaySettings struct {
	WindowX      *int `toml:"window_x"`
	WindowY      *int `toml:"window_y"`
	WindowWidth  int  `toml:"window_width"`
	WindowHeight int  `toml:"window_height"`
	RenderWidth  int  `toml:"render_width"`
	RenderHeight int  `toml:"render_height"`
}

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Channel        string `toml:"channel"`
	Slots          int    `toml:"slots"`
	HeaderSize     int    `toml:"header_size"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	FramePeriod    string `toml:"frame_period"`
	CaptureLatency string `toml:"capture_latency"`
	ReadTimeout    string `toml:"read_timeout"`
	LockTimeout    string `toml:"lock_timeout"`
	FrameRate      int    `toml:"frame_rate"`
	Snoop          *bool  `toml:"snoop"`
	Duration       string `toml:"duration"`
	LogLevel       string `toml:"log_level"`
	WatchConfig    *bool  `toml:"watch_config"`

	Display DisplaySettings `toml:"openvr_camera_sim_display"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.camsim/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".camsim", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("channel", fc.Channel, &cfg.ChannelName)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("frame-period", fc.FramePeriod, &cfg.FramePeriod); err != nil {
		return err
	}
	if err := s.setDuration("capture-latency", fc.CaptureLatency, &cfg.CaptureLatency); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("lock-timeout", fc.LockTimeout, &cfg.LockTimeout); err != nil {
		return err
	}
	if err := s.setDuration("duration", fc.Duration, &cfg.Duration); err != nil {
		return err
	}

	s.setInt("slots", fc.Slots, &cfg.SlotCount)
	s.setInt("header-size", fc.HeaderSize, &cfg.HeaderSize)
	s.setInt("width", fc.Width, &cfg.FrameWidth)
	s.setInt("height", fc.Height, &cfg.FrameHeight)
	s.setInt("frame-rate", fc.FrameRate, &cfg.FrameRate)

	ApplyDisplaySettings(cfg, fc.Display, changed)

	s.setBool("snoop", fc.Snoop, &cfg.Snoop)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return nil
}

// ApplyDisplaySettings applies the display table to cfg.
func ApplyDisplaySettings(cfg *Config, d DisplaySettings, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setPos("window-x", d.WindowX, &cfg.WindowX)
	s.setPos("window-y", d.WindowY, &cfg.WindowY)
	s.setInt("window-width", d.WindowWidth, &cfg.WindowWidth)
	s.setInt("window-height", d.WindowHeight, &cfg.WindowHeight)
	s.setInt("render-width", d.RenderWidth, &cfg.RenderWidth)
	s.setInt("render-height", d.RenderHeight, &cfg.RenderHeight)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
