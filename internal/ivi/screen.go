package ivi

import "github.com/1broseidon/ivictl/internal/wayland"

// ivi_controller_screen
const (
	opScreenDestroy        = 0
	opScreenClear          = 1
	opScreenAddLayer       = 2
	opScreenScreenshot     = 3
	opScreenSetRenderOrder = 4
)

// Screen is an ivi_controller_screen created by the compositor when it
// announces a screen.
type Screen struct {
	conn     *wayland.Conn
	id       uint32
	screenID uint32
	released bool
}

func (s *Screen) ID() uint32 {
	return s.id
}

// ScreenID returns the IVI screen id.
func (s *Screen) ScreenID() uint32 {
	return s.screenID
}

// Screenshot asks the compositor to write the screen content to filename.
func (s *Screen) Screenshot(filename string) {
	if s.released {
		return
	}
	s.conn.Send(s.id, opScreenScreenshot, wayland.NewEncoder().String(filename))
}

// Release destroys the screen handle.
func (s *Screen) Release() {
	if s.released {
		return
	}
	s.conn.Send(s.id, opScreenDestroy, nil)
	s.released = true
	s.conn.Forget(s.id)
}

func (s *Screen) Dispatch(uint16, *wayland.Decoder) error {
	return nil
}
