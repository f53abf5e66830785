package wayland

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// DefaultDisplay is the socket name used when WAYLAND_DISPLAY is unset.
	DefaultDisplay = "wayland-0"

	displayID = 1

	// maxBufferedOut triggers an implicit flush, mirroring the fixed-size
	// outgoing ring of the C library.
	maxBufferedOut = 4096
	readChunk      = 4096
)

// ErrClosed is returned by operations on a closed connection.
var ErrClosed = errors.New("wayland: connection closed")

// ProtocolError is a fatal error reported by the compositor through
// wl_display.error. It makes the connection unusable.
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wayland: protocol error on object %d (code %d): %s", e.ObjectID, e.Code, e.Message)
}

// Object is a client-side proxy that receives events.
type Object interface {
	Dispatch(opcode uint16, d *Decoder) error
}

// zombie absorbs events addressed to a destroyed object until the
// compositor acknowledges the destruction with delete_id.
type zombie struct{}

func (zombie) Dispatch(uint16, *Decoder) error { return nil }

// Conn is a client connection to a Wayland compositor. It is not safe for
// concurrent use; one goroutine drives dispatching and requests.
type Conn struct {
	fd      int
	out     []byte
	in      []byte
	objects map[uint32]Object
	nextID  uint32
	err     error
	display *display
}

// SocketPath resolves the compositor socket for name. An empty name falls
// back to WAYLAND_DISPLAY and then DefaultDisplay. Absolute names are used
// verbatim; relative names are resolved under XDG_RUNTIME_DIR.
func SocketPath(name string) (string, error) {
	if name == "" {
		name = os.Getenv("WAYLAND_DISPLAY")
	}
	if name == "" {
		name = DefaultDisplay
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", errors.New("wayland: XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, name), nil
}

// Connect opens a connection to the compositor socket identified by name
// (see SocketPath).
func Connect(name string) (*Conn, error) {
	path, err := SocketPath(name)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, errors.Wrap(err, "wayland: socket")
	}
	unix.CloseOnExec(fd)

	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "wayland: connect %s", path)
	}
	return NewConn(fd), nil
}

// NewConn wraps an already connected stream socket. The connection takes
// ownership of fd.
func NewConn(fd int) *Conn {
	c := &Conn{
		fd:      fd,
		objects: make(map[uint32]Object),
		nextID:  displayID + 1,
	}
	c.display = &display{conn: c}
	c.objects[displayID] = c.display
	return c
}

// Fd returns the socket descriptor for readiness polling.
func (c *Conn) Fd() int {
	return c.fd
}

// Err returns the sticky connection error, if any.
func (c *Conn) Err() error {
	return c.err
}

// NewID allocates a client-side object id.
func (c *Conn) NewID() uint32 {
	id := c.nextID
	c.nextID++
	return id
}

// Register associates obj with id so that events addressed to id reach it.
func (c *Conn) Register(id uint32, obj Object) {
	c.objects[id] = obj
}

// Forget marks id as destroyed on the client side. Events still in flight
// for it are discarded until the compositor sends delete_id.
func (c *Conn) Forget(id uint32) {
	if _, ok := c.objects[id]; ok {
		c.objects[id] = zombie{}
	}
}

// Send queues a request. Requests are buffered until Flush, Roundtrip or an
// internal buffer limit; failures surface through Err and later flushes.
func (c *Conn) Send(sender uint32, opcode uint16, args *Encoder) {
	if c.err != nil {
		return
	}
	c.out = appendMessage(c.out, sender, opcode, args.Bytes())
	if len(c.out) >= maxBufferedOut {
		c.Flush()
	}
}

// Flush writes all queued requests to the socket.
func (c *Conn) Flush() error {
	if c.err != nil {
		return c.err
	}
	for len(c.out) > 0 {
		n, err := unix.Write(c.fd, c.out)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return c.fail(errors.Wrap(err, "wayland: write"))
		}
		c.out = c.out[n:]
	}
	c.out = nil
	return nil
}

// DispatchPending dispatches events that were already read from the
// socket. It never blocks.
func (c *Conn) DispatchPending() error {
	if c.err != nil {
		return c.err
	}
	return c.dispatchBuffered()
}

// Dispatch flushes queued requests, blocks until at least one complete
// event is available when none is buffered, and dispatches all buffered
// events.
func (c *Conn) Dispatch() error {
	if err := c.Flush(); err != nil {
		return err
	}
	for !c.hasCompleteMessage() {
		if err := c.read(); err != nil {
			return err
		}
	}
	return c.dispatchBuffered()
}

// Roundtrip blocks until the compositor has processed every request sent so
// far and all resulting events have been dispatched.
func (c *Conn) Roundtrip() error {
	if c.err != nil {
		return c.err
	}
	done := false
	c.display.sync(func(uint32) { done = true })
	for !done {
		if err := c.Dispatch(); err != nil {
			return err
		}
	}
	return nil
}

// GetRegistry creates the registry object; l receives every advertised
// global.
func (c *Conn) GetRegistry(l RegistryListener) *Registry {
	r := &Registry{conn: c, id: c.NewID(), listener: l}
	c.Register(r.id, r)
	c.Send(displayID, opDisplayGetRegistry, NewEncoder().NewID(r.id))
	return r
}

// Close releases the socket. Queued requests are dropped.
func (c *Conn) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	if c.err == nil {
		c.err = ErrClosed
	}
	return err
}

func (c *Conn) fail(err error) error {
	if c.err == nil {
		c.err = err
	}
	return c.err
}

func (c *Conn) read() error {
	buf := make([]byte, readChunk)
	for {
		n, err := unix.Read(c.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return c.fail(errors.Wrap(err, "wayland: read"))
		}
		if n == 0 {
			return c.fail(errors.New("wayland: connection closed by compositor"))
		}
		c.in = append(c.in, buf[:n]...)
		return nil
	}
}

func (c *Conn) hasCompleteMessage() bool {
	if len(c.in) < headerSize {
		return false
	}
	size := int(hostByteOrder.Uint32(c.in[4:]) >> 16)
	return len(c.in) >= size
}

func (c *Conn) dispatchBuffered() error {
	for len(c.in) >= headerSize && c.err == nil {
		sender := hostByteOrder.Uint32(c.in[0:])
		word := hostByteOrder.Uint32(c.in[4:])
		size := int(word >> 16)
		opcode := uint16(word & 0xffff)
		if size < headerSize || size%4 != 0 {
			return c.fail(errors.Errorf("wayland: malformed message from object %d (size %d)", sender, size))
		}
		if len(c.in) < size {
			break
		}
		payload := c.in[headerSize:size]
		c.in = c.in[size:]

		obj, ok := c.objects[sender]
		if !ok {
			continue
		}
		if err := obj.Dispatch(opcode, NewDecoder(payload)); err != nil {
			return c.fail(errors.Wrapf(err, "wayland: event %d on object %d", opcode, sender))
		}
	}
	if len(c.in) == 0 {
		c.in = nil
	} else {
		c.in = append([]byte(nil), c.in...)
	}
	return c.err
}
