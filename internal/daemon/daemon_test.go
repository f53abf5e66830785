package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/config"
	"github.com/1broseidon/ivictl/internal/ipc"
)

func TestRunFailsWithoutController(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	f := &compositorFake{noController: true}

	err := run(context.Background(), config.DefaultConfig(), discardLogger(), compositor.Options{Transport: f, Logger: discardLogger()})
	if !errors.Is(err, compositor.ErrControllerUnavailable) {
		t.Fatalf("run() = %v, want ErrControllerUnavailable", err)
	}
}

func TestRunServesIPCUntilCancelled(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	visible := true
	cfg := config.DefaultConfig()
	cfg.PollIntervalMS = 1
	cfg.Surfaces = []config.SurfacePreset{{ID: 4, Visible: &visible}}
	f := &compositorFake{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, discardLogger(), compositor.Options{Transport: f, Logger: discardLogger()})
	}()

	client := ipc.NewClient()
	var status *ipc.StatusData
	deadline := time.Now().Add(2 * time.Second)
	for {
		var err error
		if status, err = client.GetStatus(); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon never answered: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if status.State != "ready" || status.SurfaceCount != 1 {
		t.Fatalf("status = %+v, want ready with the preset surface", status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("daemon did not stop")
	}
	if got := f.calls(); got[len(got)-1] != "disconnect" {
		t.Fatalf("last call = %q, want disconnect", got[len(got)-1])
	}
}

func TestRunStopsOnProtocolViolation(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.PollIntervalMS = 1
	f := &compositorFake{}
	f.unsolicited = func(l compositor.ControllerListener) {
		l.OnScreen(0, fakeScreen{f})
	}

	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(), cfg, discardLogger(), compositor.Options{Transport: f, Logger: discardLogger()})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, compositor.ErrProtocolViolation) {
			t.Fatalf("run() = %v, want ErrProtocolViolation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("daemon kept running after a violation")
	}
	if got := f.calls(); got[len(got)-1] != "disconnect" {
		t.Fatalf("last call = %q, want disconnect", got[len(got)-1])
	}
}
