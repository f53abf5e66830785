package ivi

import "github.com/1broseidon/ivictl/internal/wayland"

// ivi_controller_layer
const (
	opLayerSetSourceRectangle      = 0
	opLayerSetDestinationRectangle = 1
	opLayerSetVisibility           = 2
	opLayerSetOpacity              = 3
	opLayerSetConfiguration        = 4
	opLayerSetOrientation          = 5
	opLayerScreenshot              = 6
	opLayerClearSurfaces           = 7
	opLayerAddSurface              = 8
	opLayerRemoveSurface           = 9
	opLayerSetRenderOrder          = 10
	opLayerDestroy                 = 11
)

// Layer is an ivi_controller_layer handle. Layer events are ignored.
type Layer struct {
	conn      *wayland.Conn
	id        uint32
	iviID     uint32
	destroyed bool
}

func (l *Layer) ID() uint32 {
	return l.id
}

func (l *Layer) IVIID() uint32 {
	return l.iviID
}

func (l *Layer) AddSurface(s *Surface) {
	if l.destroyed || s == nil {
		return
	}
	l.conn.Send(l.id, opLayerAddSurface, wayland.NewEncoder().Object(s.id))
}

func (l *Layer) RemoveSurface(s *Surface) {
	if l.destroyed || s == nil {
		return
	}
	l.conn.Send(l.id, opLayerRemoveSurface, wayland.NewEncoder().Object(s.id))
}

// Destroy releases the handle. With destroyScene the compositor also
// destroys the IVI layer.
func (l *Layer) Destroy(destroyScene bool) {
	if l.destroyed {
		return
	}
	l.conn.Send(l.id, opLayerDestroy, wayland.NewEncoder().Int(boolInt(destroyScene)))
	l.destroyed = true
	l.conn.Forget(l.id)
}

func (l *Layer) Dispatch(uint16, *wayland.Decoder) error {
	return nil
}
