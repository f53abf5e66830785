package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrStopped is returned by Do once the runner has exited.
var ErrStopped = errors.New("daemon runner stopped")

// Poller drains compositor events without blocking.
type Poller interface {
	Poll() error
}

// RunnerConfig holds configuration for the runner.
type RunnerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

type request struct {
	fn   func() error
	done chan error
}

// Runner owns the compositor session's goroutine. It polls the connection
// on a ticker and executes requests from other goroutines between polls,
// so the session is never touched concurrently.
type Runner struct {
	interval time.Duration
	poller   Poller
	logger   *slog.Logger
	requests chan request
	stopped  chan struct{}
}

// NewRunner creates a runner that polls p every cfg.Interval.
func NewRunner(cfg RunnerConfig, p Poller) *Runner {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		interval: interval,
		poller:   p,
		logger:   logger,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
}

// Do runs fn on the session goroutine and returns its error. A request
// already handed to the runner still executes if ctx expires first, so
// callers must not read anything fn writes unless Do returns nil.
func (r *Runner) Do(ctx context.Context, fn func() error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case r.requests <- req:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the poll loop. Blocks until ctx is cancelled or polling
// fails; a poll failure means the connection is unusable and is returned.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.stopped)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("runner started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopped")
			return nil
		case <-ticker.C:
			if err := r.poll(); err != nil {
				r.logger.Error("runner: poll failed", "error", err)
				return err
			}
		case req := <-r.requests:
			if ctx.Err() != nil {
				req.done <- context.Cause(ctx)
				continue
			}
			req.done <- r.execute(req.fn)
		}
	}
}

func (r *Runner) poll() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("poll panic: %v", p)
		}
	}()
	return r.poller.Poll()
}

// execute runs a request. Panics are recovered so a bad request cannot
// take down the daemon.
func (r *Runner) execute(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("runner: request panic recovered", "error", p)
			err = fmt.Errorf("request panic: %v", p)
		}
	}()
	return fn()
}
