package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/config"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"10", 10, false},
		{"0x10", 16, false},
		{"4294967295", 4294967295, false},
		{"4294967296", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "true", "1", "show"} {
		if v, err := parseOnOff(s); err != nil || !v {
			t.Errorf("parseOnOff(%q) = %v, %v", s, v, err)
		}
	}
	for _, s := range []string{"off", "false", "0", "hide"} {
		if v, err := parseOnOff(s); err != nil || v {
			t.Errorf("parseOnOff(%q) = %v, %v", s, v, err)
		}
	}
	if _, err := parseOnOff("maybe"); err == nil {
		t.Errorf("parseOnOff(maybe) accepted")
	}
}

type staticLister []compositor.SurfaceInfo

func (s staticLister) ListSurfaces() ([]compositor.SurfaceInfo, error) { return s, nil }

func TestShowSurface(t *testing.T) {
	lister := staticLister{
		{ID: 2},
		{ID: 7, Bound: true, Visible: true, Opacity: 0.5, Stats: compositor.SurfaceStats{PID: 99, ProcessName: "nav"}},
	}
	var buf bytes.Buffer
	if err := showSurface(lister, &buf, 7); err != nil {
		t.Fatalf("showSurface: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id:           7", "opacity:      0.50", "process_name: nav"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	if err := showSurface(lister, &buf, 8); !errors.Is(err, compositor.ErrNotFound) {
		t.Fatalf("showSurface(8) = %v, want ErrNotFound", err)
	}
}

func TestWriteSurfaceTable(t *testing.T) {
	var buf bytes.Buffer
	writeSurfaceTable(&buf, []compositor.SurfaceInfo{{ID: 3, Visible: true, Opacity: 1, Rect: compositor.Rect{Width: 800, Height: 480}}})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("table = %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "0,0 800x480") {
		t.Fatalf("table = %q", buf.String())
	}
}

func TestFormatSources(t *testing.T) {
	lines := formatSources(map[string]config.Source{
		"log_level":     {File: "/c.yaml", Line: 2, Column: 12},
		"display":       {File: "/c.yaml", Line: 1, Column: 10},
		"surfaces.0.id": {},
	})
	want := []string{
		"# display: file:/c.yaml:1:10",
		"# log_level: file:/c.yaml:2:12",
		"# surfaces.0.id: default",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("formatSources = %q, want %q", lines, want)
	}
}
