package runtimepath

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Dir returns the runtime directory used for the daemon IPC socket.
// Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) /run/user/<uid> (if present)
// 3) /tmp/ivictl-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/ivictl-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "ivictl.sock"), nil
}

// ValidateEnvironment checks that XDG_RUNTIME_DIR names an existing
// directory, which is where Wayland clients look for the compositor socket.
// Unlike Dir it does not fall back: a compositor client without
// XDG_RUNTIME_DIR cannot find the display. Permissions other than 0700 are
// only logged.
func ValidateEnvironment(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return errors.New("XDG_RUNTIME_DIR is not set")
	}
	info, err := os.Stat(runtimeDir)
	if err != nil {
		return fmt.Errorf("XDG_RUNTIME_DIR %s: %w", runtimeDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("XDG_RUNTIME_DIR %s is not a directory", runtimeDir)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		logger.Warn("XDG_RUNTIME_DIR has unexpected permissions",
			"path", runtimeDir, "mode", fmt.Sprintf("%#o", perm), "want", "0700")
	}
	return nil
}
