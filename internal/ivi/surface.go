package ivi

import "github.com/1broseidon/ivictl/internal/wayland"

// ivi_controller_surface
const (
	opSurfaceSetVisibility           = 0
	opSurfaceSetOpacity              = 1
	opSurfaceSetSourceRectangle      = 2
	opSurfaceSetDestinationRectangle = 3
	opSurfaceSetConfiguration        = 4
	opSurfaceSetOrientation          = 5
	opSurfaceScreenshot              = 6
	opSurfaceSendStats               = 7
	opSurfaceDestroy                 = 8

	evSurfaceStats = 8
)

// Stats is the payload of an ivi_controller_surface.stats event.
type Stats struct {
	RedrawCount uint32
	FrameCount  uint32
	UpdateCount uint32
	PID         uint32
	ProcessName string
}

// SurfaceListener receives surface events the controller cares about.
// Property echo events (visibility, opacity, rectangles) are not forwarded.
type SurfaceListener interface {
	Stats(surfaceID uint32, stats Stats)
}

// Surface is an ivi_controller_surface handle.
type Surface struct {
	conn      *wayland.Conn
	id        uint32
	iviID     uint32
	listener  SurfaceListener
	destroyed bool
}

func (s *Surface) ID() uint32 {
	return s.id
}

// IVIID returns the IVI surface id the handle addresses.
func (s *Surface) IVIID() uint32 {
	return s.iviID
}

func (s *Surface) send(opcode uint16, args *wayland.Encoder) {
	if s.destroyed {
		return
	}
	s.conn.Send(s.id, opcode, args)
}

func (s *Surface) SetVisibility(visible bool) {
	v := uint32(0)
	if visible {
		v = 1
	}
	s.send(opSurfaceSetVisibility, wayland.NewEncoder().Uint(v))
}

func (s *Surface) SetOpacity(opacity wayland.Fixed) {
	s.send(opSurfaceSetOpacity, wayland.NewEncoder().Fixed(opacity))
}

func (s *Surface) SetSourceRectangle(x, y, width, height int32) {
	s.send(opSurfaceSetSourceRectangle, wayland.NewEncoder().Int(x).Int(y).Int(width).Int(height))
}

func (s *Surface) SetDestinationRectangle(x, y, width, height int32) {
	s.send(opSurfaceSetDestinationRectangle, wayland.NewEncoder().Int(x).Int(y).Int(width).Int(height))
}

// Screenshot asks the compositor to write the surface content to filename.
func (s *Surface) Screenshot(filename string) {
	s.send(opSurfaceScreenshot, wayland.NewEncoder().String(filename))
}

// SendStats requests a stats event.
func (s *Surface) SendStats() {
	s.send(opSurfaceSendStats, nil)
}

// Destroy releases the handle. With destroyScene the compositor also
// destroys the IVI surface itself.
func (s *Surface) Destroy(destroyScene bool) {
	if s.destroyed {
		return
	}
	s.send(opSurfaceDestroy, wayland.NewEncoder().Int(boolInt(destroyScene)))
	s.destroyed = true
	s.conn.Forget(s.id)
}

func (s *Surface) Dispatch(opcode uint16, d *wayland.Decoder) error {
	if opcode != evSurfaceStats {
		return nil
	}
	stats := Stats{
		RedrawCount: d.Uint(),
		FrameCount:  d.Uint(),
		UpdateCount: d.Uint(),
		PID:         d.Uint(),
		ProcessName: d.String(),
	}
	if err := d.Err(); err != nil {
		return err
	}
	if s.listener != nil {
		s.listener.Stats(s.iviID, stats)
	}
	return nil
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
