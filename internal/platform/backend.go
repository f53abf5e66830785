// Package platform connects the compositor session to a real Wayland
// compositor through the wayland wire client and the ivi_controller
// protocol objects.
package platform

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/ivi"
	"github.com/1broseidon/ivictl/internal/wayland"
)

var errNoRegistry = errors.New("global registry not created")

// WaylandTransport opens compositor connections over the Wayland socket.
type WaylandTransport struct {
	logger *slog.Logger
}

var _ compositor.Transport = (*WaylandTransport)(nil)

// NewWaylandTransport creates a transport. A nil logger uses slog.Default.
func NewWaylandTransport(logger *slog.Logger) *WaylandTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &WaylandTransport{logger: logger}
}

// Connect opens the display socket; "" selects $WAYLAND_DISPLAY or
// wayland-0.
func (t *WaylandTransport) Connect(display string) (compositor.Connection, error) {
	path, err := wayland.SocketPath(display)
	if err != nil {
		return nil, err
	}
	conn, err := wayland.Connect(path)
	if err != nil {
		return nil, err
	}
	t.logger.Info("connected to compositor", "socket", path)
	return newConnection(conn, t.logger), nil
}

// Connection wraps a wayland.Conn behind the session's connection
// interface.
type Connection struct {
	conn     *wayland.Conn
	registry *wayland.Registry
	logger   *slog.Logger
}

var _ compositor.Connection = (*Connection)(nil)

func newConnection(conn *wayland.Conn, logger *slog.Logger) *Connection {
	return &Connection{conn: conn, logger: logger}
}

func (c *Connection) ListenGlobals(l compositor.GlobalListener) error {
	c.registry = c.conn.GetRegistry(globalEvents{l})
	return c.conn.Err()
}

func (c *Connection) Roundtrip() error       { return c.conn.Roundtrip() }
func (c *Connection) DispatchPending() error { return c.conn.DispatchPending() }
func (c *Connection) Dispatch() error        { return c.conn.Dispatch() }
func (c *Connection) Fd() int                { return c.conn.Fd() }
func (c *Connection) Flush() error           { return c.conn.Flush() }

// Disconnect closes the socket. Buffered requests that were never flushed
// are dropped.
func (c *Connection) Disconnect() error {
	return c.conn.Close()
}

func (c *Connection) BindOutput(name, version uint32) (compositor.Output, error) {
	if c.registry == nil {
		return nil, fmt.Errorf("bind %s: %w", wayland.OutputInterface, errNoRegistry)
	}
	return wayland.BindOutput(c.conn, c.registry, name, version), nil
}

func (c *Connection) BindController(name, version uint32, l compositor.ControllerListener) (compositor.Controller, error) {
	if c.registry == nil {
		return nil, fmt.Errorf("bind %s: %w", ivi.InterfaceName, errNoRegistry)
	}
	ctrl := ivi.Bind(c.conn, c.registry, name, version, controllerEvents{l})
	c.logger.Debug("bound ivi controller", "name", name, "object_id", ctrl.ID())
	return &controller{ctrl: ctrl, listener: l}, nil
}

type globalEvents struct {
	l compositor.GlobalListener
}

func (g globalEvents) Global(name uint32, iface string, version uint32) {
	g.l.OnGlobal(name, iface, version)
}

func (g globalEvents) GlobalRemove(name uint32) {
	g.l.OnGlobalRemove(name)
}
