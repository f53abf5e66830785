// Package ivi implements the client side of the ivi_controller protocol
// (wayland-ivi-extension) on top of the wayland wire client.
package ivi

import (
	"github.com/pkg/errors"

	"github.com/1broseidon/ivictl/internal/wayland"
)

const (
	// InterfaceName is the global advertised by IVI compositors.
	InterfaceName = "ivi_controller"
	// Version is the protocol version this package speaks.
	Version = 1
)

// ivi_controller
const (
	opControllerCommitChanges = 0
	opControllerLayerCreate   = 1
	opControllerSurfaceCreate = 2

	evControllerScreen  = 0
	evControllerLayer   = 1
	evControllerSurface = 2
	evControllerError   = 3
)

// ControllerListener receives the objects the compositor announces. Screen
// is called with a nil screen when the compositor sends a null object.
type ControllerListener interface {
	Screen(id uint32, screen *Screen)
	Layer(id uint32)
	Surface(id uint32)
	Error(objectID, objectType, code int32, text string)
}

// Controller is a bound ivi_controller global.
type Controller struct {
	conn     *wayland.Conn
	id       uint32
	listener ControllerListener
	released bool
}

// Bind binds the ivi_controller global name and routes its events to l.
func Bind(conn *wayland.Conn, r *wayland.Registry, name uint32, version uint32, l ControllerListener) *Controller {
	if version > Version {
		version = Version
	}
	c := &Controller{conn: conn, id: conn.NewID(), listener: l}
	conn.Register(c.id, c)
	r.Bind(name, InterfaceName, version, c.id)
	return c
}

func (c *Controller) ID() uint32 {
	return c.id
}

// Err reports the connection error that would make new requests void.
func (c *Controller) Err() error {
	return c.conn.Err()
}

// CommitChanges asks the compositor to apply every pending surface, layer
// and screen change atomically.
func (c *Controller) CommitChanges() {
	if c.released {
		return
	}
	c.conn.Send(c.id, opControllerCommitChanges, nil)
}

// SurfaceCreate creates a controller handle for the IVI surface id. Events
// for the handle are delivered to l, which may be nil.
func (c *Controller) SurfaceCreate(id uint32, l SurfaceListener) (*Surface, error) {
	if c.released {
		return nil, errors.New("ivi: controller released")
	}
	if err := c.conn.Err(); err != nil {
		return nil, err
	}
	s := &Surface{conn: c.conn, id: c.conn.NewID(), iviID: id, listener: l}
	c.conn.Register(s.id, s)
	c.conn.Send(c.id, opControllerSurfaceCreate, wayland.NewEncoder().Uint(id).NewID(s.id))
	return s, nil
}

// LayerCreate creates a controller handle for the IVI layer id. A layer that
// already exists in the compositor keeps its size and surfaces.
func (c *Controller) LayerCreate(id uint32, width, height int32) (*Layer, error) {
	if c.released {
		return nil, errors.New("ivi: controller released")
	}
	if err := c.conn.Err(); err != nil {
		return nil, err
	}
	l := &Layer{conn: c.conn, id: c.conn.NewID(), iviID: id}
	c.conn.Register(l.id, l)
	c.conn.Send(c.id, opControllerLayerCreate, wayland.NewEncoder().
		Uint(id).
		Int(width).
		Int(height).
		NewID(l.id))
	return l, nil
}

// Release drops the client-side controller object. Version 1 has no
// destructor request.
func (c *Controller) Release() {
	if c.released {
		return
	}
	c.released = true
	c.conn.Forget(c.id)
}

func (c *Controller) Dispatch(opcode uint16, d *wayland.Decoder) error {
	switch opcode {
	case evControllerScreen:
		screenID := d.Uint()
		objectID := d.NewID()
		if err := d.Err(); err != nil {
			return err
		}
		var screen *Screen
		if objectID != 0 {
			screen = &Screen{conn: c.conn, id: objectID, screenID: screenID}
			c.conn.Register(objectID, screen)
		}
		if c.listener != nil {
			c.listener.Screen(screenID, screen)
		}
	case evControllerLayer:
		id := d.Uint()
		if err := d.Err(); err != nil {
			return err
		}
		if c.listener != nil {
			c.listener.Layer(id)
		}
	case evControllerSurface:
		id := d.Uint()
		if err := d.Err(); err != nil {
			return err
		}
		if c.listener != nil {
			c.listener.Surface(id)
		}
	case evControllerError:
		objectID := d.Int()
		objectType := d.Int()
		code := d.Int()
		text := d.String()
		if err := d.Err(); err != nil {
			return err
		}
		if c.listener != nil {
			c.listener.Error(objectID, objectType, code, text)
		}
	}
	return nil
}
