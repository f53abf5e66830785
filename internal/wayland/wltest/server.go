// Package wltest provides an in-process compositor endpoint for testing
// Wayland clients without a running compositor.
package wltest

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/ivictl/internal/wayland"
)

// Message is a request read from the client side.
type Message struct {
	Sender uint32
	Opcode uint16
	Args   []byte
}

// Decoder returns a decoder over the message arguments.
func (m Message) Decoder() *wayland.Decoder {
	return wayland.NewDecoder(m.Args)
}

// Server is the compositor end of a socket pair.
type Server struct {
	f *os.File
}

// NewPair returns a client connection and the server end it talks to.
func NewPair() (*wayland.Conn, *Server, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("socketpair: %w", err)
	}
	return wayland.NewConn(fds[0]), &Server{f: os.NewFile(uintptr(fds[1]), "wltest-server")}, nil
}

// Read blocks until a complete request arrives.
func (s *Server) Read() (Message, error) {
	hdr := make([]byte, 8)
	if _, err := io.ReadFull(s.f, hdr); err != nil {
		return Message{}, err
	}
	word := binary.NativeEndian.Uint32(hdr[4:])
	size := int(word >> 16)
	if size < 8 {
		return Message{}, fmt.Errorf("malformed request size %d", size)
	}
	args := make([]byte, size-8)
	if _, err := io.ReadFull(s.f, args); err != nil {
		return Message{}, err
	}
	return Message{
		Sender: binary.NativeEndian.Uint32(hdr[0:]),
		Opcode: uint16(word & 0xffff),
		Args:   args,
	}, nil
}

// Expect reads the next request and checks its sender and opcode.
func (s *Server) Expect(sender uint32, opcode uint16) (Message, error) {
	m, err := s.Read()
	if err != nil {
		return m, err
	}
	if m.Sender != sender || m.Opcode != opcode {
		return m, fmt.Errorf("got request %d/%d, want %d/%d", m.Sender, m.Opcode, sender, opcode)
	}
	return m, nil
}

// Send writes an event from sender.
func (s *Server) Send(sender uint32, opcode uint16, args *wayland.Encoder) error {
	payload := args.Bytes()
	msg := binary.NativeEndian.AppendUint32(nil, sender)
	msg = binary.NativeEndian.AppendUint32(msg, uint32(8+len(payload))<<16|uint32(opcode))
	msg = append(msg, payload...)
	_, err := s.f.Write(msg)
	return err
}

// Done completes a wl_display.sync whose callback id is read from m.
func (s *Server) Done(m Message) error {
	id := m.Decoder().NewID()
	if err := s.Send(id, 0, wayland.NewEncoder().Uint(0)); err != nil {
		return err
	}
	return s.Send(1, 1, wayland.NewEncoder().Uint(id))
}

// Readable reports whether the client has written anything not yet read.
func (s *Server) Readable() (bool, error) {
	fds := []unix.PollFd{{Fd: int32(s.f.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		return false, err
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}

func (s *Server) Close() error {
	return s.f.Close()
}
