package daemon

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/wayland"
)

// compositorFake is an in-memory compositor with one output, one screen
// and the surfaces listed in existing.
type compositorFake struct {
	mu       sync.Mutex
	log      []string
	existing []compositor.SurfaceID
	// stats is reported for every surface asked for statistics.
	stats compositor.SurfaceStats
	// noController leaves ivi_controller unadvertised.
	noController bool
	// delay stalls every round-trip after Init.
	delay time.Duration
	// unsolicited is delivered once on the first dispatch after Init.
	unsolicited func(compositor.ControllerListener)

	global     compositor.GlobalListener
	listener   compositor.ControllerListener
	roundtrips int
	pending    []compositor.SurfaceID
}

func (f *compositorFake) add(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, fmt.Sprintf(format, args...))
}

func (f *compositorFake) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

func (f *compositorFake) Connect(string) (compositor.Connection, error) { return f, nil }

func (f *compositorFake) ListenGlobals(l compositor.GlobalListener) error {
	f.global = l
	return nil
}

func (f *compositorFake) Roundtrip() error {
	f.roundtrips++
	switch f.roundtrips {
	case 1:
		f.global.OnGlobal(1, compositor.OutputInterface, 3)
		if !f.noController {
			f.global.OnGlobal(2, compositor.ControllerInterface, 1)
		}
	case 2:
		f.listener.OnScreen(0, fakeScreen{f})
		for _, id := range f.existing {
			f.listener.OnSurface(id)
		}
	default:
		time.Sleep(f.delay)
		for _, id := range f.pending {
			f.listener.OnSurfaceStats(id, f.stats)
		}
		f.pending = nil
	}
	return nil
}

func (f *compositorFake) DispatchPending() error {
	if fn := f.unsolicited; fn != nil {
		f.unsolicited = nil
		fn(f.listener)
	}
	return nil
}

func (f *compositorFake) Dispatch() error { return nil }
func (f *compositorFake) Fd() int         { return -1 }
func (f *compositorFake) Flush() error    { return nil }
func (f *compositorFake) Disconnect() error {
	f.add("disconnect")
	return nil
}

func (f *compositorFake) BindOutput(uint32, uint32) (compositor.Output, error) {
	return fakeRelease{}, nil
}

func (f *compositorFake) BindController(_, _ uint32, l compositor.ControllerListener) (compositor.Controller, error) {
	f.listener = l
	return fakeController{f}, nil
}

type fakeRelease struct{}

func (fakeRelease) Release() {}

type fakeController struct{ f *compositorFake }

func (c fakeController) CreateSurface(id compositor.SurfaceID) (compositor.SurfaceHandle, error) {
	return fakeSurface{f: c.f, id: id}, nil
}

func (c fakeController) CreateLayer(id compositor.LayerID, _, _ int32) (compositor.LayerHandle, error) {
	return fakeLayer{f: c.f, id: id}, nil
}

func (c fakeController) CommitChanges() { c.f.add("commit") }
func (c fakeController) Release()       {}

type fakeSurface struct {
	f  *compositorFake
	id compositor.SurfaceID
}

func (s fakeSurface) SetVisibility(v bool) { s.f.add("surface %d visibility %t", s.id, v) }
func (s fakeSurface) SetOpacity(o wayland.Fixed) {
	s.f.add("surface %d opacity %d", s.id, o)
}
func (s fakeSurface) SetDestinationRectangle(x, y, w, h int32) {
	s.f.add("surface %d rect %d,%d %dx%d", s.id, x, y, w, h)
}
func (s fakeSurface) Screenshot(string) {}
func (s fakeSurface) SendStats()        { s.f.pending = append(s.f.pending, s.id) }
func (s fakeSurface) Destroy(scene bool) {
	s.f.add("surface %d destroy %t", s.id, scene)
}

type fakeLayer struct {
	f  *compositorFake
	id compositor.LayerID
}

func (l fakeLayer) AddSurface(s compositor.SurfaceHandle) {
	l.f.add("layer %d add %d", l.id, s.(fakeSurface).id)
}
func (l fakeLayer) RemoveSurface(s compositor.SurfaceHandle) {
	l.f.add("layer %d remove %d", l.id, s.(fakeSurface).id)
}
func (l fakeLayer) Destroy(bool) {}

type fakeScreen struct{ f *compositorFake }

func (s fakeScreen) Screenshot(name string) { s.f.add("screen screenshot %s", name) }
func (s fakeScreen) Release()               {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(f *compositorFake) *compositor.Session {
	return compositor.NewSession(compositor.Options{
		Transport: f,
		Logger:    discardLogger(),
		Getwd:     func() (string, error) { return "/work", nil },
	})
}
