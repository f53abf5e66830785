package wayland

import "github.com/pkg/errors"

// wl_display
const (
	opDisplaySync        = 0
	opDisplayGetRegistry = 1

	evDisplayError    = 0
	evDisplayDeleteID = 1
)

// wl_registry
const (
	opRegistryBind = 0

	evRegistryGlobal       = 0
	evRegistryGlobalRemove = 1
)

// wl_callback
const evCallbackDone = 0

// wl_output
const (
	OutputInterface = "wl_output"

	// outputMaxVersion is the highest wl_output version bound. Version 3
	// introduces the release request.
	outputMaxVersion = 3
	opOutputRelease  = 0
)

type display struct {
	conn *Conn
}

func (d *display) Dispatch(opcode uint16, dec *Decoder) error {
	switch opcode {
	case evDisplayError:
		objectID := dec.Object()
		code := dec.Uint()
		message := dec.String()
		if err := dec.Err(); err != nil {
			return err
		}
		d.conn.fail(&ProtocolError{ObjectID: objectID, Code: code, Message: message})
	case evDisplayDeleteID:
		id := dec.Uint()
		if err := dec.Err(); err != nil {
			return err
		}
		delete(d.conn.objects, id)
	}
	return nil
}

// sync asks the compositor for a done event once every earlier request has
// been processed.
func (d *display) sync(done func(serial uint32)) {
	cb := &callback{done: done}
	id := d.conn.NewID()
	d.conn.Register(id, cb)
	d.conn.Send(displayID, opDisplaySync, NewEncoder().NewID(id))
}

type callback struct {
	done func(serial uint32)
}

func (cb *callback) Dispatch(opcode uint16, dec *Decoder) error {
	if opcode != evCallbackDone {
		return nil
	}
	serial := dec.Uint()
	if err := dec.Err(); err != nil {
		return err
	}
	if cb.done != nil {
		cb.done(serial)
		cb.done = nil
	}
	return nil
}

// RegistryListener receives global advertisements.
type RegistryListener interface {
	Global(name uint32, iface string, version uint32)
	GlobalRemove(name uint32)
}

// Registry is the singleton global registry of a connection.
type Registry struct {
	conn     *Conn
	id       uint32
	listener RegistryListener
}

func (r *Registry) Dispatch(opcode uint16, dec *Decoder) error {
	switch opcode {
	case evRegistryGlobal:
		name := dec.Uint()
		iface := dec.String()
		version := dec.Uint()
		if err := dec.Err(); err != nil {
			return err
		}
		if r.listener != nil {
			r.listener.Global(name, iface, version)
		}
	case evRegistryGlobalRemove:
		name := dec.Uint()
		if err := dec.Err(); err != nil {
			return err
		}
		if r.listener != nil {
			r.listener.GlobalRemove(name)
		}
	default:
		return errors.Errorf("unknown wl_registry event %d", opcode)
	}
	return nil
}

// Bind binds the global name to the client object id, which the caller has
// allocated with NewID and registered.
func (r *Registry) Bind(name uint32, iface string, version uint32, id uint32) {
	r.conn.Send(r.id, opRegistryBind, NewEncoder().
		Uint(name).
		String(iface).
		Uint(version).
		NewID(id))
}

// Output is a bound wl_output. Its events are not interpreted; binding it is
// enough for compositors that only announce screens for bound outputs.
type Output struct {
	conn    *Conn
	id      uint32
	version uint32
}

// BindOutput binds the wl_output global name.
func BindOutput(conn *Conn, r *Registry, name uint32, version uint32) *Output {
	if version > outputMaxVersion {
		version = outputMaxVersion
	}
	o := &Output{conn: conn, id: conn.NewID(), version: version}
	conn.Register(o.id, o)
	r.Bind(name, OutputInterface, version, o.id)
	return o
}

func (o *Output) ID() uint32 {
	return o.id
}

func (o *Output) Dispatch(uint16, *Decoder) error {
	return nil
}

// Release destroys the client-side output object.
func (o *Output) Release() {
	if o.version >= 3 {
		o.conn.Send(o.id, opOutputRelease, nil)
	}
	o.conn.Forget(o.id)
}
