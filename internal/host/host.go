// Package host powers the device off when a session ends.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Shutdown runs command (e.g. "sudo shutdown -h now"), split on whitespace.
func Shutdown(ctx context.Context, command string) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("empty shutdown command")
	}
	slog.Info("shutting down host", "command", command)
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %q: %w: %s", command, err, strings.TrimSpace(string(out)))
	}
	return nil
}
