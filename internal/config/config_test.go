package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.PollInterval() != 20*time.Millisecond {
		t.Fatalf("PollInterval() = %v", cfg.PollInterval())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file, got %q", res.File)
	}
	if res.Config.ScreenshotPath != DefaultScreenshotPath {
		t.Fatalf("screenshot_path = %q", res.Config.ScreenshotPath)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != DefaultLogLevel || res.Config.PollIntervalMS != DefaultPollIntervalMS {
		t.Fatalf("unexpected config %+v", res.Config)
	}
}

func TestLoadFromPath_SurfacePresets(t *testing.T) {
	data := strings.Join([]string{
		`display: wayland-ivi`,
		`log_level: debug`,
		`surfaces:`,
		`  - id: 20`,
		`    visible: true`,
		`    opacity: 0.5`,
		`    rect: {x: 0, y: 0, width: 1920, height: 720}`,
		`    layers: [100, 200]`,
		`  - id: 21`,
		``,
	}, "\n")
	res, err := LoadFromPath(writeConfig(t, data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != "wayland-ivi" || cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("display/log_level = %q/%v", cfg.Display, cfg.SlogLevel())
	}
	if cfg.PollIntervalMS != DefaultPollIntervalMS {
		t.Fatalf("poll_interval_ms not defaulted: %d", cfg.PollIntervalMS)
	}
	if len(cfg.Surfaces) != 2 {
		t.Fatalf("got %d surfaces", len(cfg.Surfaces))
	}
	p := cfg.Surfaces[0]
	if p.ID != 20 || p.Visible == nil || !*p.Visible || p.Opacity == nil || *p.Opacity != 0.5 {
		t.Fatalf("unexpected preset %+v", p)
	}
	if p.Rect == nil || *p.Rect != (Rect{Width: 1920, Height: 720}) {
		t.Fatalf("rect = %+v", p.Rect)
	}
	if len(p.Layers) != 2 || p.Layers[0] != 100 || p.Layers[1] != 200 {
		t.Fatalf("layers = %v", p.Layers)
	}
	if q := cfg.Surfaces[1]; q.Visible != nil || q.Opacity != nil || q.Rect != nil {
		t.Fatalf("unset preset fields should stay nil: %+v", q)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "hotkey: \"Mod4-Mod1-t\"\n"))
	if err == nil {
		t.Fatal("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "hotkey") {
		t.Fatalf("error does not name the key: %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	data := strings.Join([]string{
		`surfaces:`,
		`  - id: 1`,
		`  - id: 2`,
		`    opacity: 1.5`,
		``,
	}, "\n")
	path := writeConfig(t, data)
	_, err := LoadFromPath(path)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Path != "surfaces.1.opacity" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.File != path || verr.Source.Line != 4 {
		t.Fatalf("source = %+v, want %s line 4", verr.Source, path)
	}
	if !strings.HasPrefix(err.Error(), path+":4:") {
		t.Fatalf("error = %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	opacity := func(v float64) *float64 { return &v }
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantPath: "log_level"},
		{name: "poll interval", mutate: func(c *Config) { c.PollIntervalMS = 0 }, wantPath: "poll_interval_ms"},
		{name: "screenshot path", mutate: func(c *Config) { c.ScreenshotPath = "  " }, wantPath: "screenshot_path"},
		{name: "duplicate surface", mutate: func(c *Config) {
			c.Surfaces = []SurfacePreset{{ID: 3}, {ID: 3}}
		}, wantPath: "surfaces.1.id"},
		{name: "negative opacity", mutate: func(c *Config) {
			c.Surfaces = []SurfacePreset{{ID: 3, Opacity: opacity(-0.1)}}
		}, wantPath: "surfaces.0.opacity"},
		{name: "negative rect", mutate: func(c *Config) {
			c.Surfaces = []SurfacePreset{{ID: 3, Rect: &Rect{Width: -1}}}
		}, wantPath: "surfaces.0.rect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.wantPath {
				t.Fatalf("Validate() = %v, want error at %q", err, tt.wantPath)
			}
		})
	}
}

func TestMarshalRoundTripsThroughLoader(t *testing.T) {
	visible := false
	cfg := DefaultConfig()
	cfg.Surfaces = []SurfacePreset{{ID: 7, Visible: &visible}}
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	res, err := LoadFromPath(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("load: %v\n%s", err, data)
	}
	if len(res.Config.Surfaces) != 1 || res.Config.Surfaces[0].Visible == nil || *res.Config.Surfaces[0].Visible {
		t.Fatalf("surfaces = %+v", res.Config.Surfaces)
	}
}
