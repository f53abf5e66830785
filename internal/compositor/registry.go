package compositor

import (
	"log/slog"
	"slices"
)

// SurfaceCreator creates remote surfaces on first reference.
type SurfaceCreator interface {
	CreateSurface(id SurfaceID) (SurfaceHandle, error)
}

// Registry owns every surface and screen proxy of a session, keyed by id.
// Pointers it hands out stay valid until the proxy is removed.
type Registry struct {
	surfaces map[SurfaceID]*SurfaceProxy
	screens  map[ScreenID]*ScreenProxy
	logger   *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		surfaces: make(map[SurfaceID]*SurfaceProxy),
		screens:  make(map[ScreenID]*ScreenProxy),
		logger:   logger,
	}
}

// GetOrCreateSurface returns the proxy for id, creating the remote surface
// through c when id is unknown. Creation failures are logged and leave the
// proxy without a handle; the proxy is inserted either way.
func (r *Registry) GetOrCreateSurface(c SurfaceCreator, id SurfaceID) *SurfaceProxy {
	if p, ok := r.surfaces[id]; ok {
		return p
	}

	var handle SurfaceHandle
	if c == nil {
		r.logger.Error("cannot create controller surface without a controller", "surface_id", id)
	} else {
		h, err := c.CreateSurface(id)
		if err != nil || h == nil {
			r.logger.Error("failed to create controller surface", "surface_id", id, "error", err)
		} else {
			handle = h
		}
	}

	p := &SurfaceProxy{id: id, handle: handle, opacity: 1}
	r.surfaces[id] = p
	return p
}

// Surface looks up a surface proxy without creating it.
func (r *Registry) Surface(id SurfaceID) (*SurfaceProxy, bool) {
	p, ok := r.surfaces[id]
	return p, ok
}

// Screen looks up a screen proxy.
func (r *Registry) Screen(id ScreenID) (*ScreenProxy, bool) {
	p, ok := r.screens[id]
	return p, ok
}

// RegisterScreen adds a discovered screen. A second discovery of the same
// id is a protocol violation.
func (r *Registry) RegisterScreen(id ScreenID, handle ScreenHandle) (*ScreenProxy, error) {
	if _, ok := r.screens[id]; ok {
		return nil, violation("register screen", "screen %d already registered", id)
	}
	p := &ScreenProxy{id: id, handle: handle, order: len(r.screens)}
	r.screens[id] = p
	return p, nil
}

// RemoveSurface erases the proxy for id. Removing an id that is not
// registered means the caller holds a stale reference and is a violation.
func (r *Registry) RemoveSurface(id SurfaceID) error {
	if _, ok := r.surfaces[id]; !ok {
		return violation("remove surface", "surface %d is not registered", id)
	}
	delete(r.surfaces, id)
	return nil
}

// SurfaceIDs returns the registered surface ids in ascending order.
func (r *Registry) SurfaceIDs() []SurfaceID {
	ids := make([]SurfaceID, 0, len(r.surfaces))
	for id := range r.surfaces {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Screens returns the screen proxies in discovery order.
func (r *Registry) Screens() []*ScreenProxy {
	screens := make([]*ScreenProxy, 0, len(r.screens))
	for _, p := range r.screens {
		screens = append(screens, p)
	}
	slices.SortFunc(screens, func(a, b *ScreenProxy) int { return a.order - b.order })
	return screens
}

func (r *Registry) SurfaceCount() int { return len(r.surfaces) }
func (r *Registry) ScreenCount() int  { return len(r.screens) }
