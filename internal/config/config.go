package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel       = "info"
	DefaultPollIntervalMS = 20
	DefaultScreenshotPath = "/tmp/ivi-screenshot.png"
)

// Rect is a destination rectangle in screen coordinates.
type Rect struct {
	X      int32 `yaml:"x"`
	Y      int32 `yaml:"y"`
	Width  int32 `yaml:"width"`
	Height int32 `yaml:"height"`
}

// SurfacePreset is applied to a surface once the daemon's session is ready.
// Unset fields leave the surface as the compositor has it.
type SurfacePreset struct {
	ID      uint32   `yaml:"id"`
	Visible *bool    `yaml:"visible,omitempty"`
	Opacity *float64 `yaml:"opacity,omitempty"`
	Rect    *Rect    `yaml:"rect,omitempty"`
	// Layers the surface is added to, in order.
	Layers []uint32 `yaml:"layers,omitempty"`
}

// Config is the ivictl configuration.
type Config struct {
	// Display is the Wayland display socket name or absolute path. Empty
	// uses $WAYLAND_DISPLAY, then wayland-0.
	Display        string          `yaml:"display,omitempty"`
	LogLevel       string          `yaml:"log_level"`
	PollIntervalMS int             `yaml:"poll_interval_ms"`
	ScreenshotPath string          `yaml:"screenshot_path"`
	Surfaces       []SurfacePreset `yaml:"surfaces,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       DefaultLogLevel,
		PollIntervalMS: DefaultPollIntervalMS,
		ScreenshotPath: DefaultScreenshotPath,
	}
}

// PollInterval is how often the daemon polls the compositor connection.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// SlogLevel maps log_level to a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ValidationError reports an invalid value at a YAML path such as
// "surfaces.1.opacity". Source is filled in when the value came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (c *Config) Validate() error {
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.PollIntervalMS <= 0 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be > 0")}
	}
	if strings.TrimSpace(c.ScreenshotPath) == "" {
		return &ValidationError{Path: "screenshot_path", Err: fmt.Errorf("screenshot_path must not be empty")}
	}

	seen := make(map[uint32]int, len(c.Surfaces))
	for i, preset := range c.Surfaces {
		path := fmt.Sprintf("surfaces.%d", i)
		if first, ok := seen[preset.ID]; ok {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("surface %d already configured at surfaces.%d", preset.ID, first)}
		}
		seen[preset.ID] = i
		if err := validatePreset(&preset); err != nil {
			err.Path = path + "." + err.Path
			return err
		}
	}
	return nil
}

func validatePreset(p *SurfacePreset) *ValidationError {
	if p.Opacity != nil && (*p.Opacity < 0 || *p.Opacity > 1) {
		return &ValidationError{Path: "opacity", Err: fmt.Errorf("opacity must be between 0 and 1")}
	}
	if p.Rect != nil && (p.Rect.Width < 0 || p.Rect.Height < 0) {
		return &ValidationError{Path: "rect", Err: fmt.Errorf("rect width and height must be >= 0")}
	}
	return nil
}
