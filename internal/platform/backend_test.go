package platform

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/wayland"
	"github.com/1broseidon/ivictl/internal/wayland/wltest"
)

// Request and event opcodes as they appear on the wire.
const (
	displaySync        = 0
	displayGetRegistry = 1
	registryGlobal     = 0
	registryBind       = 0
	outputRelease      = 0

	controllerCommit        = 0
	controllerSurfaceCreate = 2
	controllerScreenEvent   = 0
	controllerSurfaceEvent  = 2
	surfaceSetVisibility    = 0
	surfaceSendStats        = 7
	surfaceDestroy          = 8
	surfaceStatsEvent       = 8
	screenDestroy           = 0
)

type pairTransport struct {
	conn *wayland.Conn
}

func (p pairTransport) Connect(string) (compositor.Connection, error) {
	return newConnection(p.conn, discardLogger()), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type compositorScript struct {
	srv        *wltest.Server
	registryID uint32
	outputID   uint32
	ctrlID     uint32
	surfaceID  uint32
}

func (c *compositorScript) bind(wantIface string) (uint32, error) {
	m, err := c.srv.Expect(c.registryID, registryBind)
	if err != nil {
		return 0, err
	}
	d := m.Decoder()
	_, iface, _, id := d.Uint(), d.String(), d.Uint(), d.NewID()
	if iface != wantIface {
		return 0, fmt.Errorf("bound %q, want %q", iface, wantIface)
	}
	return id, d.Err()
}

// handshake plays the compositor side of session initialization: globals on
// the first sync, one screen and one surface on the second.
func (c *compositorScript) handshake() error {
	m, err := c.srv.Expect(1, displayGetRegistry)
	if err != nil {
		return err
	}
	c.registryID = m.Decoder().NewID()

	sync, err := c.srv.Expect(1, displaySync)
	if err != nil {
		return err
	}
	if err := c.srv.Send(c.registryID, registryGlobal, wayland.NewEncoder().Uint(1).String("wl_output").Uint(4)); err != nil {
		return err
	}
	if err := c.srv.Send(c.registryID, registryGlobal, wayland.NewEncoder().Uint(2).String("ivi_controller").Uint(1)); err != nil {
		return err
	}
	if err := c.srv.Done(sync); err != nil {
		return err
	}

	if c.outputID, err = c.bind("wl_output"); err != nil {
		return err
	}
	if c.ctrlID, err = c.bind("ivi_controller"); err != nil {
		return err
	}
	sync, err = c.srv.Expect(1, displaySync)
	if err != nil {
		return err
	}
	if err := c.srv.Send(c.ctrlID, controllerScreenEvent, wayland.NewEncoder().Uint(0).NewID(0xff000001)); err != nil {
		return err
	}
	if err := c.srv.Send(c.ctrlID, controllerSurfaceEvent, wayland.NewEncoder().Uint(20)); err != nil {
		return err
	}
	return c.srv.Done(sync)
}

func TestSessionOverWayland(t *testing.T) {
	conn, srv, err := wltest.NewPair()
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	session := compositor.NewSession(compositor.Options{
		Transport: pairTransport{conn: conn},
		Logger:    discardLogger(),
		OnFatal:   func(err error) { t.Errorf("protocol violation: %v", err) },
	})
	script := &compositorScript{srv: srv}

	errCh := make(chan error, 1)
	go func() { errCh <- script.handshake() }()
	if err := session.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("compositor: %v", err)
	}
	if screens := session.Screens(); len(screens) != 1 || screens[0].ID != 0 {
		t.Fatalf("screens = %+v", screens)
	}

	if err := session.SetSurfaceVisibility(20, true); err != nil {
		t.Fatalf("SetSurfaceVisibility: %v", err)
	}
	m, err := srv.Expect(script.ctrlID, controllerSurfaceCreate)
	if err != nil {
		t.Fatalf("surface_create: %v", err)
	}
	d := m.Decoder()
	if iviID := d.Uint(); iviID != 20 {
		t.Fatalf("surface_create ivi id = %d, want 20", iviID)
	}
	script.surfaceID = d.NewID()
	if m, err = srv.Expect(script.surfaceID, surfaceSetVisibility); err != nil {
		t.Fatalf("set_visibility: %v", err)
	}
	if v := m.Decoder().Uint(); v != 1 {
		t.Fatalf("visibility = %d, want 1", v)
	}
	if _, err := srv.Expect(script.ctrlID, controllerCommit); err != nil {
		t.Fatalf("commit_changes: %v", err)
	}

	go func() {
		err := expectAll(srv, [2]uint32{script.surfaceID, surfaceSendStats})
		var sync wltest.Message
		if err == nil {
			sync, err = srv.Expect(1, displaySync)
		}
		if err == nil {
			err = srv.Send(script.surfaceID, surfaceStatsEvent,
				wayland.NewEncoder().Uint(10).Uint(9).Uint(8).Uint(4242).String("hmi"))
		}
		if err == nil {
			err = srv.Done(sync)
		}
		errCh <- err
	}()
	seq, err := session.ListSurfaces()
	if err != nil {
		t.Fatalf("ListSurfaces: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("compositor: %v", err)
	}
	for id := range seq {
		if id != 20 {
			t.Fatalf("listed surface %d, want 20", id)
		}
	}
	info, _ := session.Surface(20)
	want := compositor.SurfaceStats{RedrawCount: 10, FrameCount: 9, UpdateCount: 8, PID: 4242, ProcessName: "hmi"}
	if info.Stats != want {
		t.Fatalf("stats = %+v, want %+v", info.Stats, want)
	}

	go func() {
		err := expectAll(srv,
			[2]uint32{script.surfaceID, surfaceDestroy},
			[2]uint32{0xff000001, screenDestroy},
			[2]uint32{script.outputID, outputRelease},
		)
		if err == nil {
			var sync wltest.Message
			if sync, err = srv.Expect(1, displaySync); err == nil {
				err = srv.Done(sync)
			}
		}
		errCh <- err
	}()
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("compositor: %v", err)
	}
}

func expectAll(srv *wltest.Server, requests ...[2]uint32) error {
	for _, r := range requests {
		if _, err := srv.Expect(r[0], uint16(r[1])); err != nil {
			return err
		}
	}
	return nil
}
