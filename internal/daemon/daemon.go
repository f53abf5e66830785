package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/config"
	"github.com/1broseidon/ivictl/internal/ipc"
	"github.com/1broseidon/ivictl/internal/platform"
	"github.com/1broseidon/ivictl/internal/runtimepath"
)

// Run connects to the compositor, applies the configured presets and serves
// IPC requests until ctx is cancelled, the connection fails or the
// compositor desyncs.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	return run(ctx, cfg, logger, compositor.Options{
		Display:   cfg.Display,
		Transport: platform.NewWaylandTransport(logger),
		CheckEnvironment: func() error {
			return runtimepath.ValidateEnvironment(logger)
		},
		Logger: logger,
	})
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts compositor.Options) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// A desynced session cannot be trusted for further requests; stop the
	// daemon instead of panicking on the session goroutine.
	opts.OnFatal = func(err error) {
		logger.Error("stopping daemon after protocol violation", "error", err)
		cancel(err)
	}
	session := compositor.NewSession(opts)
	if err := session.Init(); err != nil {
		return fmt.Errorf("initialize compositor session: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("failed to close compositor session", "error", cerr)
		}
	}()

	if err := ApplyPresets(session, cfg.Surfaces, logger); err != nil {
		logger.Warn("some surface presets failed", "error", err)
	}
	if err := violation(ctx); err != nil {
		return err
	}

	runner := NewRunner(RunnerConfig{Interval: cfg.PollInterval(), Logger: logger}, session)
	srv, err := ipc.NewServer(NewSessionController(runner, session, cfg), logger)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	logger.Info("ivictl daemon running")
	runErr := runner.Run(ctx)
	if err := violation(ctx); err != nil {
		return err
	}
	return runErr
}

// violation returns the protocol violation that cancelled ctx, if any.
func violation(ctx context.Context) error {
	if cause := context.Cause(ctx); errors.Is(cause, compositor.ErrProtocolViolation) {
		return cause
	}
	return nil
}
