package compositor

import (
	"errors"
	"fmt"
)

var (
	// ErrEnvironment means the runtime environment check failed during Init.
	ErrEnvironment = errors.New("environment is not properly configured")
	// ErrConnect means the compositor connection could not be opened.
	ErrConnect = errors.New("failed to connect to compositor")
	// ErrControllerUnavailable means no ivi_controller global was
	// advertised during the first round-trip.
	ErrControllerUnavailable = errors.New("ivi_controller interface not available")
	// ErrProtocolViolation is matched by every *ViolationError.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrNotFound means an operation referenced an unknown surface.
	ErrNotFound = errors.New("object not found")
	// ErrNotReady means an operation was called outside the ready state.
	ErrNotReady = errors.New("session not ready")
	// ErrInvalidState means Init was called more than once.
	ErrInvalidState = errors.New("invalid session state")
	// ErrLayerCreate means the transient layer handle could not be created.
	ErrLayerCreate = errors.New("failed to create controller layer")
	// ErrCaptureUnconfirmed is always returned by CaptureAllScreens: the
	// compositor writes screenshots asynchronously and never confirms them.
	ErrCaptureUnconfirmed = errors.New("screenshot completion not confirmed")
)

// ViolationError reports a desync with the compositor that the session
// cannot recover from. Sessions hand these to their fatal handler.
type ViolationError struct {
	Op     string
	Detail string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("protocol violation in %s: %s", e.Op, e.Detail)
}

func (e *ViolationError) Is(target error) bool {
	return target == ErrProtocolViolation
}

func violation(op, format string, args ...any) *ViolationError {
	return &ViolationError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
