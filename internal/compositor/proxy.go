package compositor

import "github.com/1broseidon/ivictl/internal/wayland"

// Rect is a destination rectangle in screen coordinates.
type Rect struct {
	X      int32 `json:"x"`
	Y      int32 `json:"y"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// SurfaceProxy mirrors one remote surface: the last requested state and the
// handle used to address it. A nil handle means remote creation failed;
// requests on such a proxy are dropped.
type SurfaceProxy struct {
	id      SurfaceID
	handle  SurfaceHandle
	visible bool
	opacity float64
	rect    Rect
	stats   SurfaceStats
}

func (p *SurfaceProxy) ID() SurfaceID         { return p.id }
func (p *SurfaceProxy) Visible() bool         { return p.visible }
func (p *SurfaceProxy) Opacity() float64      { return p.opacity }
func (p *SurfaceProxy) Rect() Rect            { return p.rect }
func (p *SurfaceProxy) Stats() SurfaceStats   { return p.stats }
func (p *SurfaceProxy) Handle() SurfaceHandle { return p.handle }

func (p *SurfaceProxy) setVisibility(visible bool) {
	p.visible = visible
	if p.handle != nil {
		p.handle.SetVisibility(visible)
	}
}

// setOpacity stores opacity, which the caller has clamped, and sends its
// fixed-point form.
func (p *SurfaceProxy) setOpacity(opacity float64) {
	p.opacity = opacity
	if p.handle != nil {
		p.handle.SetOpacity(wayland.FixedFromFloat(opacity))
	}
}

func (p *SurfaceProxy) setDestinationRectangle(r Rect) {
	p.rect = r
	if p.handle != nil {
		p.handle.SetDestinationRectangle(r.X, r.Y, r.Width, r.Height)
	}
}

func (p *SurfaceProxy) requestStats() {
	if p.handle != nil {
		p.handle.SendStats()
	}
}

// destroy tells the compositor to destroy the surface and drops the handle.
func (p *SurfaceProxy) destroy() {
	if p.handle != nil {
		p.handle.Destroy(true)
		p.handle = nil
	}
}

// release drops the handle without destroying the remote surface.
func (p *SurfaceProxy) release() {
	if p.handle != nil {
		p.handle.Destroy(false)
		p.handle = nil
	}
}

// SurfaceInfo is a copy of a proxy's state.
type SurfaceInfo struct {
	ID      SurfaceID    `json:"id"`
	Bound   bool         `json:"bound"`
	Visible bool         `json:"visible"`
	Opacity float64      `json:"opacity"`
	Rect    Rect         `json:"rect"`
	Stats   SurfaceStats `json:"stats"`
}

func (p *SurfaceProxy) Info() SurfaceInfo {
	return SurfaceInfo{
		ID:      p.id,
		Bound:   p.handle != nil,
		Visible: p.visible,
		Opacity: p.opacity,
		Rect:    p.rect,
		Stats:   p.stats,
	}
}

// ScreenProxy mirrors one remote screen. Screens are only ever registered
// on discovery and live as long as the session.
type ScreenProxy struct {
	id     ScreenID
	handle ScreenHandle
	order  int
}

func (p *ScreenProxy) ID() ScreenID         { return p.id }
func (p *ScreenProxy) Handle() ScreenHandle { return p.handle }

// Order is the 0-based position in which the screen was discovered.
func (p *ScreenProxy) Order() int { return p.order }

// ScreenInfo is a copy of a screen proxy's state.
type ScreenInfo struct {
	ID    ScreenID `json:"id"`
	Order int      `json:"order"`
}

func (p *ScreenProxy) Info() ScreenInfo {
	return ScreenInfo{ID: p.id, Order: p.order}
}
