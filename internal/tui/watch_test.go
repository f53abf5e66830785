package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/ipc"
)

type fakeClient struct {
	surfaces []compositor.SurfaceInfo
	err      error
	toggled  []string
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{State: "ready", SurfaceCount: len(f.surfaces), ScreenCount: 1}, nil
}

func (f *fakeClient) ListSurfaces() ([]compositor.SurfaceInfo, error) {
	return f.surfaces, nil
}

func (f *fakeClient) ListScreens() ([]compositor.ScreenInfo, error) {
	return []compositor.ScreenInfo{{ID: 0}}, nil
}

func (f *fakeClient) SetVisibility(id uint32, visible bool) error {
	f.toggled = append(f.toggled, compositor.SurfaceID(id).String())
	if visible {
		f.toggled[len(f.toggled)-1] += " on"
	} else {
		f.toggled[len(f.toggled)-1] += " off"
	}
	return nil
}

func loaded(t *testing.T, client *fakeClient) model {
	t.Helper()
	m := newModel(client, 0)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, cmd := next.(model).Update(m.fetch())
	if cmd == nil {
		t.Fatalf("snapshot did not schedule the next refresh")
	}
	return next.(model)
}

func TestSnapshotFillsTable(t *testing.T) {
	client := &fakeClient{surfaces: []compositor.SurfaceInfo{
		{ID: 3, Bound: true, Visible: true, Opacity: 1, Stats: compositor.SurfaceStats{PID: 42, ProcessName: "hmi"}},
		{ID: 8, Bound: false},
	}}
	m := loaded(t, client)

	rows := m.table.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "3" || rows[0][1] != "yes" || rows[0][2] != "1.00" || rows[0][6] != "hmi" {
		t.Fatalf("row 0 = %q", rows[0])
	}
	if rows[1][1] != "unbound" {
		t.Fatalf("row 1 visibility = %q, want unbound", rows[1][1])
	}

	view := m.View()
	for _, want := range []string{"daemon ready", "surfaces:2", "screens: 0"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestToggleSelectedSurface(t *testing.T) {
	client := &fakeClient{surfaces: []compositor.SurfaceInfo{{ID: 3, Bound: true, Visible: true}}}
	m := loaded(t, client)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	if cmd == nil {
		t.Fatalf("toggle produced no command")
	}
	if msg, ok := cmd().(actionMsg); !ok || msg.err != nil {
		t.Fatalf("toggle result = %#v", msg)
	}
	if len(client.toggled) != 1 || client.toggled[0] != "3 off" {
		t.Fatalf("toggled = %q, want [3 off]", client.toggled)
	}
}

func TestDaemonErrorShown(t *testing.T) {
	client := &fakeClient{err: errors.New("failed to connect to daemon")}
	m := loaded(t, client)

	if m.status != nil {
		t.Fatalf("status kept after error")
	}
	view := m.View()
	if !strings.Contains(view, "daemon not running") || !strings.Contains(view, "failed to connect to daemon") {
		t.Fatalf("view does not report the error:\n%s", view)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newModel(&fakeClient{}, 0)
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s did not quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s did not quit", key)
		}
	}
}
