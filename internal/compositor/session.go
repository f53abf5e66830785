// Package compositor controls an IVI compositor: it mirrors the screens and
// surfaces the compositor announces and applies visibility, opacity,
// placement, layer membership and lifecycle changes to them.
//
// A Session is driven by a single goroutine. It has no internal locking;
// Poll and every operation must be called from the goroutine that owns it.
package compositor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateAwaitingController
	StateReady
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateAwaitingController:
		return "awaiting-controller"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Session.
type Options struct {
	// Display names the compositor socket; "" selects the default.
	Display   string
	Transport Transport
	// CheckEnvironment validates the runtime environment before
	// connecting. Nil skips the check.
	CheckEnvironment func() error
	Logger           *slog.Logger
	// OnFatal handles protocol violations. The default logs and panics.
	OnFatal func(err error)
	// Getwd resolves relative screenshot templates. Defaults to os.Getwd.
	Getwd func() (string, error)
}

// Session is the controller's protocol state machine.
type Session struct {
	display    string
	transport  Transport
	checkEnv   func() error
	logger     *slog.Logger
	fatal      func(error)
	getwd      func() (string, error)
	readable   func(fd int) (bool, error)
	state      State
	conn       Connection
	controller Controller
	batcher    *CommitBatcher
	registry   *Registry
	outputs    []Output
}

// NewSession returns an uninitialized session.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		display:   opts.Display,
		transport: opts.Transport,
		checkEnv:  opts.CheckEnvironment,
		logger:    logger,
		fatal:     opts.OnFatal,
		getwd:     opts.Getwd,
		readable:  pollReadable,
		registry:  NewRegistry(logger),
	}
	if s.fatal == nil {
		s.fatal = func(err error) {
			logger.Error("unrecoverable compositor desync", "error", err)
			panic(err)
		}
	}
	if s.getwd == nil {
		s.getwd = os.Getwd
	}
	return s
}

func (s *Session) State() State {
	return s.state
}

// Registry exposes the session's proxies for inspection. Callers must not
// mutate them.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Init connects to the compositor and binds the controller.
//
// The first round-trip delivers the globals currently advertised, which is
// when the controller gets bound. Only after binding can the controller's
// listener receive the compositor's existing screens, layers and surfaces,
// which the second round-trip collects.
func (s *Session) Init() error {
	if s.state != StateUninitialized {
		return fmt.Errorf("%w: init called in state %s", ErrInvalidState, s.state)
	}
	s.logger.Info("initializing compositor controller", "display", s.display)

	s.state = StateConnecting
	if s.checkEnv != nil {
		if err := s.checkEnv(); err != nil {
			return s.fail(fmt.Errorf("%w: %w", ErrEnvironment, err))
		}
	}
	if s.transport == nil {
		return s.fail(fmt.Errorf("%w: no transport configured", ErrConnect))
	}
	conn, err := s.transport.Connect(s.display)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrConnect, err))
	}
	s.conn = conn

	s.state = StateAwaitingController
	if err := conn.ListenGlobals(listener{s}); err != nil {
		return s.fail(fmt.Errorf("listen for globals: %w", err))
	}
	if err := conn.Roundtrip(); err != nil {
		return s.fail(fmt.Errorf("first round-trip: %w", err))
	}
	if s.controller == nil {
		return s.fail(ErrControllerUnavailable)
	}
	if err := conn.Roundtrip(); err != nil {
		return s.fail(fmt.Errorf("second round-trip: %w", err))
	}

	s.state = StateReady
	s.logger.Info("compositor controller ready",
		"screens", s.registry.ScreenCount(),
		"surfaces", s.registry.SurfaceCount())
	return nil
}

// fail drops everything acquired during Init and enters StateFailed.
func (s *Session) fail(err error) error {
	s.logger.Error("compositor controller init failed", "state", s.state, "error", err)
	s.releaseAll()
	if s.conn != nil {
		if derr := s.conn.Disconnect(); derr != nil {
			s.logger.Warn("disconnect after failed init", "error", derr)
		}
		s.conn = nil
	}
	s.state = StateFailed
	return err
}

// Close releases every proxy, the controller and the connection, in that
// order. The connection is round-tripped once before disconnecting so the
// releases reach the compositor.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.releaseAll()

	var errs []error
	if s.conn != nil {
		if err := s.conn.Roundtrip(); err != nil {
			errs = append(errs, fmt.Errorf("final round-trip: %w", err))
		}
		if err := s.conn.Disconnect(); err != nil {
			errs = append(errs, fmt.Errorf("disconnect: %w", err))
		}
		s.conn = nil
	}
	s.state = StateClosed
	s.logger.Info("compositor controller closed")
	return errors.Join(errs...)
}

func (s *Session) releaseAll() {
	for _, id := range s.registry.SurfaceIDs() {
		p, _ := s.registry.Surface(id)
		p.release()
	}
	for _, screen := range s.registry.Screens() {
		if screen.handle != nil {
			screen.handle.Release()
		}
	}
	for _, out := range s.outputs {
		out.Release()
	}
	s.outputs = nil
	s.registry = NewRegistry(s.logger)
	if s.controller != nil {
		s.controller.Release()
		s.controller = nil
	}
	s.batcher = nil
}

func (s *Session) requireReady(op string) error {
	if s.state == StateReady {
		return nil
	}
	err := fmt.Errorf("%w: %s called in state %s", ErrNotReady, op, s.state)
	s.logger.Error("compositor operation rejected", "op", op, "state", s.state)
	return err
}

// violate reports an unrecoverable desync to the fatal handler. It returns
// err for handlers that do not abort. A ready session enters StateFailed so
// later operations are rejected; Close still releases it.
func (s *Session) violate(err *ViolationError) error {
	s.logger.Error("protocol violation", "op", err.Op, "detail", err.Detail)
	if s.state == StateReady {
		s.state = StateFailed
	}
	s.fatal(err)
	return err
}
