package compositor

import "errors"

// listener routes connection events into the session.
type listener struct {
	s *Session
}

func (l listener) OnGlobal(name uint32, iface string, version uint32) {
	s := l.s
	switch iface {
	case OutputInterface:
		out, err := s.conn.BindOutput(name, version)
		if err != nil {
			s.logger.Error("failed to bind output", "name", name, "error", err)
			return
		}
		s.outputs = append(s.outputs, out)
		s.logger.Debug("bound output", "name", name, "version", version)
	case ControllerInterface:
		if s.controller != nil {
			s.violate(violation("bind controller", "second %s global %d advertised", ControllerInterface, name))
			return
		}
		ctrl, err := s.conn.BindController(name, ControllerVersion, l)
		if err != nil || ctrl == nil {
			s.logger.Error("failed to bind controller", "name", name, "error", err)
			return
		}
		s.controller = ctrl
		s.batcher = NewCommitBatcher(ctrl, s.conn)
		s.logger.Info("bound controller", "name", name, "advertised_version", version)
	}
}

func (l listener) OnGlobalRemove(name uint32) {
	l.s.logger.Debug("global removed", "name", name)
}

func (l listener) OnScreen(id ScreenID, screen ScreenHandle) {
	s := l.s
	if screen == nil {
		s.violate(violation("screen event", "screen %d announced without an object", id))
		return
	}
	if _, err := s.registry.RegisterScreen(id, screen); err != nil {
		var verr *ViolationError
		if errors.As(err, &verr) {
			s.violate(verr)
			return
		}
		s.logger.Error("failed to register screen", "screen_id", id, "error", err)
		return
	}
	s.logger.Info("discovered screen", "screen_id", id)
}

func (l listener) OnLayer(id LayerID) {
	l.s.logger.Info("discovered layer", "layer_id", id)
}

func (l listener) OnSurface(id SurfaceID) {
	s := l.s
	s.logger.Info("discovered surface", "surface_id", id)
	s.registry.GetOrCreateSurface(s.controller, id)
}

func (l listener) OnSurfaceStats(id SurfaceID, stats SurfaceStats) {
	s := l.s
	p, ok := s.registry.Surface(id)
	if !ok {
		s.logger.Warn("stats for unknown surface", "surface_id", id)
		return
	}
	p.stats = stats
	s.logger.Info("surface stats",
		"surface_id", id,
		"redraw_count", stats.RedrawCount,
		"frame_count", stats.FrameCount,
		"update_count", stats.UpdateCount,
		"pid", stats.PID,
		"process_name", stats.ProcessName)
}

func (l listener) OnError(e ControllerError) {
	l.s.logger.Warn("controller error",
		"object_id", e.ObjectID,
		"object_type", e.ObjectType,
		"code", e.Code,
		"text", e.Text)
}
