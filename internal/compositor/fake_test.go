package compositor

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/ivictl/internal/wayland"
)

// calls records every request the fakes receive, in order.
type calls struct {
	log []string
}

func (c *calls) add(format string, args ...any) {
	c.log = append(c.log, fmt.Sprintf(format, args...))
}

type fakeGlobal struct {
	name    uint32
	iface   string
	version uint32
}

type fakeTransport struct {
	conn     *fakeConn
	err      error
	displays []string
}

func (t *fakeTransport) Connect(display string) (Connection, error) {
	t.displays = append(t.displays, display)
	if t.err != nil {
		return nil, t.err
	}
	return t.conn, nil
}

// fakeConn announces globals on the first round-trip and runs announce on
// the second, which is when a real compositor sends existing objects.
type fakeConn struct {
	calls *calls

	globals  []fakeGlobal
	announce func(l ControllerListener)
	// onRoundtrip runs on every round-trip after the second.
	onRoundtrip func(l ControllerListener)

	global     GlobalListener
	controller ControllerListener
	ctrl       *fakeController

	roundtrips      int
	flushes         int
	dispatches      int
	pendingDispatch int
	disconnects     int
	outputs         []*fakeOutput

	flushErr     error
	roundtripErr error
}

func newFakeConn(c *calls) *fakeConn {
	return &fakeConn{
		calls: c,
		ctrl:  &fakeController{calls: c},
		globals: []fakeGlobal{
			{name: 1, iface: OutputInterface, version: 3},
			{name: 2, iface: ControllerInterface, version: 1},
		},
	}
}

func (c *fakeConn) ListenGlobals(l GlobalListener) error {
	c.global = l
	return nil
}

func (c *fakeConn) Roundtrip() error {
	c.roundtrips++
	c.calls.add("roundtrip")
	if c.roundtripErr != nil {
		return c.roundtripErr
	}
	switch {
	case c.roundtrips == 1:
		for _, g := range c.globals {
			c.global.OnGlobal(g.name, g.iface, g.version)
		}
	case c.roundtrips == 2:
		if c.announce != nil && c.controller != nil {
			c.announce(c.controller)
		}
	case c.onRoundtrip != nil && c.controller != nil:
		c.onRoundtrip(c.controller)
	}
	return nil
}

func (c *fakeConn) DispatchPending() error {
	c.pendingDispatch++
	return nil
}

func (c *fakeConn) Dispatch() error {
	c.dispatches++
	return nil
}

func (c *fakeConn) Fd() int { return 42 }

func (c *fakeConn) Flush() error {
	c.flushes++
	c.calls.add("flush")
	return c.flushErr
}

func (c *fakeConn) Disconnect() error {
	c.disconnects++
	c.calls.add("disconnect")
	return nil
}

func (c *fakeConn) BindOutput(name, version uint32) (Output, error) {
	o := &fakeOutput{calls: c.calls, name: name}
	c.outputs = append(c.outputs, o)
	c.calls.add("bind output %d", name)
	return o, nil
}

func (c *fakeConn) BindController(name, version uint32, l ControllerListener) (Controller, error) {
	c.controller = l
	c.calls.add("bind controller %d v%d", name, version)
	return c.ctrl, nil
}

type fakeOutput struct {
	calls    *calls
	name     uint32
	released bool
}

func (o *fakeOutput) Release() {
	o.released = true
	o.calls.add("release output %d", o.name)
}

type fakeController struct {
	calls *calls

	commits  int
	surfaces map[SurfaceID]*fakeSurface
	layers   []*fakeLayer
	released bool

	surfaceErr  error
	nilSurfaces bool
	layerErr    error
}

func (c *fakeController) CreateSurface(id SurfaceID) (SurfaceHandle, error) {
	c.calls.add("create surface %d", id)
	if c.surfaceErr != nil {
		return nil, c.surfaceErr
	}
	if c.nilSurfaces {
		return nil, nil
	}
	if c.surfaces == nil {
		c.surfaces = make(map[SurfaceID]*fakeSurface)
	}
	s := &fakeSurface{calls: c.calls, id: id}
	c.surfaces[id] = s
	return s, nil
}

func (c *fakeController) CreateLayer(id LayerID, width, height int32) (LayerHandle, error) {
	c.calls.add("create layer %d %dx%d", id, width, height)
	if c.layerErr != nil {
		return nil, c.layerErr
	}
	l := &fakeLayer{calls: c.calls, id: id}
	c.layers = append(c.layers, l)
	return l, nil
}

func (c *fakeController) CommitChanges() {
	c.commits++
	c.calls.add("commit")
}

func (c *fakeController) Release() {
	c.released = true
	c.calls.add("release controller")
}

type fakeSurface struct {
	calls   *calls
	id      SurfaceID
	opacity wayland.Fixed
}

func (s *fakeSurface) SetVisibility(visible bool) {
	s.calls.add("surface %d visibility %t", s.id, visible)
}

func (s *fakeSurface) SetOpacity(opacity wayland.Fixed) {
	s.opacity = opacity
	s.calls.add("surface %d opacity %d", s.id, opacity)
}

func (s *fakeSurface) SetDestinationRectangle(x, y, width, height int32) {
	s.calls.add("surface %d rect %d,%d %dx%d", s.id, x, y, width, height)
}

func (s *fakeSurface) Screenshot(filename string) {
	s.calls.add("surface %d screenshot %s", s.id, filename)
}

func (s *fakeSurface) SendStats() {
	s.calls.add("surface %d stats", s.id)
}

func (s *fakeSurface) Destroy(destroyScene bool) {
	s.calls.add("surface %d destroy %t", s.id, destroyScene)
}

type fakeLayer struct {
	calls *calls
	id    LayerID
}

func (l *fakeLayer) AddSurface(s SurfaceHandle) {
	l.calls.add("layer %d add %d", l.id, s.(*fakeSurface).id)
}

func (l *fakeLayer) RemoveSurface(s SurfaceHandle) {
	l.calls.add("layer %d remove %d", l.id, s.(*fakeSurface).id)
}

func (l *fakeLayer) Destroy(destroyScene bool) {
	l.calls.add("layer %d destroy %t", l.id, destroyScene)
}

type fakeScreen struct {
	calls *calls
	id    ScreenID
}

func (s *fakeScreen) Screenshot(filename string) {
	s.calls.add("screen %d screenshot %s", s.id, filename)
}

func (s *fakeScreen) Release() {
	s.calls.add("release screen %d", s.id)
}

// fatalRecorder collects violations instead of panicking.
type fatalRecorder struct {
	errs []error
}

func (r *fatalRecorder) record(err error) {
	r.errs = append(r.errs, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionFixture struct {
	calls   *calls
	conn    *fakeConn
	fatal   *fatalRecorder
	session *Session
}

func newFixture() *sessionFixture {
	c := &calls{}
	conn := newFakeConn(c)
	f := &sessionFixture{calls: c, conn: conn, fatal: &fatalRecorder{}}
	f.session = NewSession(Options{
		Transport: &fakeTransport{conn: conn},
		Logger:    discardLogger(),
		OnFatal:   f.fatal.record,
		Getwd:     func() (string, error) { return "/home/x", nil },
	})
	return f
}

// ready returns an initialized fixture whose call log starts empty.
func ready(t *testing.T, announce func(c *calls, l ControllerListener)) *sessionFixture {
	t.Helper()
	f := newFixture()
	if announce != nil {
		f.conn.announce = func(l ControllerListener) { announce(f.calls, l) }
	}
	if err := f.session.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	f.calls.log = nil
	return f
}
