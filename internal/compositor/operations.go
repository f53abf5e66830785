package compositor

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Poll dispatches events already read, then checks the connection without
// waiting and dispatches once more if data arrived. It never blocks beyond
// that check.
func (s *Session) Poll() error {
	if err := s.requireReady("poll"); err != nil {
		return err
	}
	if err := s.conn.DispatchPending(); err != nil {
		return fmt.Errorf("dispatch pending events: %w", err)
	}
	readable, err := s.readable(s.conn.Fd())
	if err != nil {
		return fmt.Errorf("poll compositor connection: %w", err)
	}
	if readable {
		if err := s.conn.Dispatch(); err != nil {
			return fmt.Errorf("dispatch events: %w", err)
		}
	}
	return nil
}

// SetSurfaceVisibility shows or hides a surface, creating its controller
// handle on first use.
func (s *Session) SetSurfaceVisibility(id SurfaceID, visible bool) error {
	if err := s.requireReady("set surface visibility"); err != nil {
		return err
	}
	s.logger.Info("set surface visibility", "surface_id", id, "visible", visible)

	p := s.registry.GetOrCreateSurface(s.controller, id)
	p.setVisibility(visible)
	return s.batcher.CommitAndFlush()
}

// SetSurfaceOpacity sets a surface's opacity. Values outside [0,1] are
// clamped before conversion to fixed point.
func (s *Session) SetSurfaceOpacity(id SurfaceID, opacity float64) error {
	if err := s.requireReady("set surface opacity"); err != nil {
		return err
	}
	s.logger.Info("set surface opacity", "surface_id", id, "opacity", opacity)

	p := s.registry.GetOrCreateSurface(s.controller, id)
	p.setOpacity(clampOpacity(opacity))
	return s.batcher.CommitAndFlush()
}

func clampOpacity(v float64) float64 {
	// NaN compares false both ways and would pass through; treat it as 0.
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetSurfaceDestinationRectangle places a surface on its screen.
func (s *Session) SetSurfaceDestinationRectangle(id SurfaceID, x, y, width, height int32) error {
	if err := s.requireReady("set surface destination rectangle"); err != nil {
		return err
	}
	s.logger.Info("set surface destination rectangle",
		"surface_id", id, "x", x, "y", y, "width", width, "height", height)

	p := s.registry.GetOrCreateSurface(s.controller, id)
	p.setDestinationRectangle(Rect{X: x, Y: y, Width: width, Height: height})
	return s.batcher.CommitAndFlush()
}

// AddSurfaceToLayer adds a surface, created on demand, to a layer.
func (s *Session) AddSurfaceToLayer(surfaceID SurfaceID, layerID LayerID) error {
	if err := s.requireReady("add surface to layer"); err != nil {
		return err
	}
	s.logger.Info("add surface to layer", "surface_id", surfaceID, "layer_id", layerID)

	return s.withTransientLayer("add surface to layer", layerID, func(layer LayerHandle) error {
		p := s.registry.GetOrCreateSurface(s.controller, surfaceID)
		if p.handle == nil {
			return s.violate(violation("add surface to layer", "surface %d has no controller handle", surfaceID))
		}
		layer.AddSurface(p.handle)
		return s.batcher.CommitAndFlush()
	})
}

// RemoveSurfaceFromLayer removes a known surface from a layer.
func (s *Session) RemoveSurfaceFromLayer(surfaceID SurfaceID, layerID LayerID) error {
	if err := s.requireReady("remove surface from layer"); err != nil {
		return err
	}
	s.logger.Info("remove surface from layer", "surface_id", surfaceID, "layer_id", layerID)

	return s.withTransientLayer("remove surface from layer", layerID, func(layer LayerHandle) error {
		p, ok := s.registry.Surface(surfaceID)
		if !ok {
			s.logger.Error("surface does not exist", "op", "remove surface from layer", "surface_id", surfaceID)
			return fmt.Errorf("%w: surface %d", ErrNotFound, surfaceID)
		}
		if p.handle == nil {
			return s.violate(violation("remove surface from layer", "surface %d has no controller handle", surfaceID))
		}
		layer.RemoveSurface(p.handle)
		return s.batcher.CommitAndFlush()
	})
}

// withTransientLayer creates a fresh handle for layerID, runs fn and then
// destroys the handle, keeping the layer itself.
//
// Layer membership is changed through a new handle on every call instead of
// a cached one: other clients may change the layer's surface list
// concurrently, and a cached handle's view of it goes stale.
func (s *Session) withTransientLayer(op string, layerID LayerID, fn func(LayerHandle) error) error {
	layer, err := s.controller.CreateLayer(layerID, 0, 0)
	if err != nil || layer == nil {
		s.logger.Error("failed to create controller layer", "op", op, "layer_id", layerID, "error", err)
		return fmt.Errorf("%w: layer %d: %v", ErrLayerCreate, layerID, err)
	}
	defer layer.Destroy(false)
	return fn(layer)
}

// DestroySurface destroys a known surface. The destroy request is flushed
// before the proxy is removed, so the proxy never outlives the compositor's
// knowledge of the surface.
func (s *Session) DestroySurface(id SurfaceID) error {
	if err := s.requireReady("destroy surface"); err != nil {
		return err
	}
	s.logger.Info("destroy surface", "surface_id", id)

	p, ok := s.registry.Surface(id)
	if !ok {
		s.logger.Error("surface does not exist", "op", "destroy surface", "surface_id", id)
		return fmt.Errorf("%w: surface %d", ErrNotFound, id)
	}
	p.destroy()
	flushErr := s.batcher.CommitAndFlush()

	if err := s.registry.RemoveSurface(id); err != nil {
		var verr *ViolationError
		if errors.As(err, &verr) {
			return s.violate(verr)
		}
		return err
	}
	return flushErr
}

// CaptureAllScreens asks the compositor to write a screenshot of every
// screen, named after template (see ScreenshotFilename), and waits one
// round-trip for the requests to be processed. It returns the requested
// file names.
//
// The error is never nil: ErrCaptureUnconfirmed is returned on success
// because the compositor writes files asynchronously and does not confirm
// completion.
func (s *Session) CaptureAllScreens(template string) ([]string, error) {
	if err := s.requireReady("capture all screens"); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(template)
	s.logger.Info("capture all screens", "template", trimmed)

	var cwd string
	if !strings.HasPrefix(trimmed, "/") {
		wd, err := s.getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	var paths []string
	for _, screen := range s.registry.Screens() {
		name := ScreenshotFilename(trimmed, screen.id, cwd)
		if screen.handle != nil {
			screen.handle.Screenshot(name)
		}
		paths = append(paths, name)
		s.logger.Info("requested screenshot", "screen_id", screen.id, "file", name)
	}

	if err := s.conn.Roundtrip(); err != nil {
		return paths, fmt.Errorf("wait for screenshots: %w", err)
	}
	s.logger.Info("Screenshots of all outputs finished", "template", trimmed, "screens", len(paths))
	return paths, ErrCaptureUnconfirmed
}

// ListSurfaces logs the known surface ids, asks the compositor for each
// surface's statistics and waits one round-trip so the stats events have
// been handled when it returns. The sequence yields the ids in ascending
// order and can be iterated repeatedly.
func (s *Session) ListSurfaces() (iter.Seq[SurfaceID], error) {
	if err := s.requireReady("list surfaces"); err != nil {
		return nil, err
	}
	ids := s.registry.SurfaceIDs()

	var b strings.Builder
	b.WriteString("Known ivi-ids are:")
	for _, id := range ids {
		b.WriteByte(' ')
		b.WriteString(id.String())
	}
	s.logger.Info(b.String())

	for _, id := range ids {
		p, _ := s.registry.Surface(id)
		p.requestStats()
	}
	if err := s.conn.Roundtrip(); err != nil {
		return nil, fmt.Errorf("wait for surface stats: %w", err)
	}
	return slices.Values(ids), nil
}

// Surface returns a copy of a known surface's state. It does no I/O.
func (s *Session) Surface(id SurfaceID) (SurfaceInfo, bool) {
	p, ok := s.registry.Surface(id)
	if !ok {
		return SurfaceInfo{}, false
	}
	return p.Info(), true
}

// Surfaces returns copies of every surface's state, ordered by id.
func (s *Session) Surfaces() []SurfaceInfo {
	ids := s.registry.SurfaceIDs()
	infos := make([]SurfaceInfo, 0, len(ids))
	for _, id := range ids {
		p, _ := s.registry.Surface(id)
		infos = append(infos, p.Info())
	}
	return infos
}

// Screens returns copies of every screen's state in discovery order.
func (s *Session) Screens() []ScreenInfo {
	screens := s.registry.Screens()
	infos := make([]ScreenInfo, 0, len(screens))
	for _, p := range screens {
		infos = append(infos, p.Info())
	}
	return infos
}
