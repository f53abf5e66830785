package daemon

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/config"
)

// Operations is the subset of the session the presets drive.
type Operations interface {
	SetSurfaceVisibility(id compositor.SurfaceID, visible bool) error
	SetSurfaceOpacity(id compositor.SurfaceID, opacity float64) error
	SetSurfaceDestinationRectangle(id compositor.SurfaceID, x, y, width, height int32) error
	AddSurfaceToLayer(surface compositor.SurfaceID, layer compositor.LayerID) error
}

// ApplyPresets applies every configured surface preset in order. A failing
// step does not stop the remaining ones; all failures are joined.
func ApplyPresets(ops Operations, presets []config.SurfacePreset, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var errs []error
	record := func(id compositor.SurfaceID, step string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("surface %d %s: %w", id, step, err))
		}
	}

	for _, p := range presets {
		id := compositor.SurfaceID(p.ID)
		if p.Rect != nil {
			record(id, "rect", ops.SetSurfaceDestinationRectangle(id, p.Rect.X, p.Rect.Y, p.Rect.Width, p.Rect.Height))
		}
		if p.Opacity != nil {
			record(id, "opacity", ops.SetSurfaceOpacity(id, *p.Opacity))
		}
		if p.Visible != nil {
			record(id, "visibility", ops.SetSurfaceVisibility(id, *p.Visible))
		}
		for _, layer := range p.Layers {
			record(id, fmt.Sprintf("layer %d", layer), ops.AddSurfaceToLayer(id, compositor.LayerID(layer)))
		}
		logger.Info("applied surface preset", "surface_id", id)
	}
	return errors.Join(errs...)
}
