package platform

import (
	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/ivi"
)

// controller adapts ivi.Controller to the session's typed ids. Surfaces it
// creates report their stats to the same listener as the controller.
type controller struct {
	ctrl     *ivi.Controller
	listener compositor.ControllerListener
}

func (c *controller) CreateSurface(id compositor.SurfaceID) (compositor.SurfaceHandle, error) {
	s, err := c.ctrl.SurfaceCreate(uint32(id), surfaceEvents{c.listener})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *controller) CreateLayer(id compositor.LayerID, width, height int32) (compositor.LayerHandle, error) {
	l, err := c.ctrl.LayerCreate(uint32(id), width, height)
	if err != nil {
		return nil, err
	}
	return layer{l}, nil
}

func (c *controller) CommitChanges() { c.ctrl.CommitChanges() }
func (c *controller) Release()       { c.ctrl.Release() }

// layer accepts only surfaces created by controller.
type layer struct {
	l *ivi.Layer
}

func (l layer) AddSurface(s compositor.SurfaceHandle) {
	if surface, ok := s.(*ivi.Surface); ok {
		l.l.AddSurface(surface)
	}
}

func (l layer) RemoveSurface(s compositor.SurfaceHandle) {
	if surface, ok := s.(*ivi.Surface); ok {
		l.l.RemoveSurface(surface)
	}
}

func (l layer) Destroy(destroyScene bool) { l.l.Destroy(destroyScene) }

type controllerEvents struct {
	l compositor.ControllerListener
}

func (e controllerEvents) Screen(id uint32, screen *ivi.Screen) {
	if screen == nil {
		e.l.OnScreen(compositor.ScreenID(id), nil)
		return
	}
	e.l.OnScreen(compositor.ScreenID(id), screen)
}

func (e controllerEvents) Layer(id uint32)   { e.l.OnLayer(compositor.LayerID(id)) }
func (e controllerEvents) Surface(id uint32) { e.l.OnSurface(compositor.SurfaceID(id)) }

func (e controllerEvents) Error(objectID, objectType, code int32, text string) {
	e.l.OnError(compositor.ControllerError{
		ObjectID:   objectID,
		ObjectType: compositor.ObjectType(objectType),
		Code:       code,
		Text:       text,
	})
}

type surfaceEvents struct {
	l compositor.ControllerListener
}

func (e surfaceEvents) Stats(surfaceID uint32, st ivi.Stats) {
	e.l.OnSurfaceStats(compositor.SurfaceID(surfaceID), compositor.SurfaceStats{
		RedrawCount: st.RedrawCount,
		FrameCount:  st.FrameCount,
		UpdateCount: st.UpdateCount,
		PID:         st.PID,
		ProcessName: st.ProcessName,
	})
}
