package daemon

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/config"
	"github.com/1broseidon/ivictl/internal/ipc"
)

// SessionController serves IPC commands by running them on the session
// goroutine.
type SessionController struct {
	runner  *Runner
	session *compositor.Session
	cfg     *config.Config
	started time.Time
}

func NewSessionController(runner *Runner, session *compositor.Session, cfg *config.Config) *SessionController {
	return &SessionController{
		runner:  runner,
		session: session,
		cfg:     cfg,
		started: time.Now(),
	}
}

func (c *SessionController) Status(ctx context.Context) (*ipc.StatusData, error) {
	status := &ipc.StatusData{
		Display:       c.cfg.Display,
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
		DaemonRunning: true,
	}
	err := c.runner.Do(ctx, func() error {
		status.State = c.session.State().String()
		status.SurfaceCount = c.session.Registry().SurfaceCount()
		status.ScreenCount = c.session.Registry().ScreenCount()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// ListSurfaces refreshes statistics for every known surface before
// reporting them.
func (c *SessionController) ListSurfaces(ctx context.Context) ([]compositor.SurfaceInfo, error) {
	var out []compositor.SurfaceInfo
	err := c.runner.Do(ctx, func() error {
		ids, err := c.session.ListSurfaces()
		if err != nil {
			return err
		}
		for _, id := range slices.Collect(ids) {
			if info, ok := c.session.Surface(id); ok {
				out = append(out, info)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SessionController) ListScreens(ctx context.Context) ([]compositor.ScreenInfo, error) {
	var out []compositor.ScreenInfo
	err := c.runner.Do(ctx, func() error {
		out = c.session.Screens()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SessionController) SetVisibility(ctx context.Context, id compositor.SurfaceID, visible bool) error {
	return c.runner.Do(ctx, func() error {
		return c.session.SetSurfaceVisibility(id, visible)
	})
}

func (c *SessionController) SetOpacity(ctx context.Context, id compositor.SurfaceID, opacity float64) error {
	return c.runner.Do(ctx, func() error {
		return c.session.SetSurfaceOpacity(id, opacity)
	})
}

func (c *SessionController) SetRectangle(ctx context.Context, id compositor.SurfaceID, r compositor.Rect) error {
	return c.runner.Do(ctx, func() error {
		return c.session.SetSurfaceDestinationRectangle(id, r.X, r.Y, r.Width, r.Height)
	})
}

func (c *SessionController) AddToLayer(ctx context.Context, surface compositor.SurfaceID, layer compositor.LayerID) error {
	return c.runner.Do(ctx, func() error {
		return c.session.AddSurfaceToLayer(surface, layer)
	})
}

func (c *SessionController) RemoveFromLayer(ctx context.Context, surface compositor.SurfaceID, layer compositor.LayerID) error {
	return c.runner.Do(ctx, func() error {
		return c.session.RemoveSurfaceFromLayer(surface, layer)
	})
}

func (c *SessionController) DestroySurface(ctx context.Context, id compositor.SurfaceID) error {
	return c.runner.Do(ctx, func() error {
		return c.session.DestroySurface(id)
	})
}

// Screenshot captures every screen. The compositor never acknowledges a
// capture, so an unconfirmed capture is reported through Confirmed rather
// than as an error.
func (c *SessionController) Screenshot(ctx context.Context, template string) (*ipc.ScreenshotData, error) {
	if template == "" {
		template = c.cfg.ScreenshotPath
	}
	var data ipc.ScreenshotData
	err := c.runner.Do(ctx, func() error {
		files, err := c.session.CaptureAllScreens(template)
		data.Files = files
		if errors.Is(err, compositor.ErrCaptureUnconfirmed) {
			return nil
		}
		data.Confirmed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}
	return &data, nil
}
