// Package setup contains the one-time setup procedures run by the service
// initializers: built-in procedures for Postgres schema objects and Ollama
// model pulls, and an opaque external-script runner for everything else.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/ai-stack/stackctl/internal/env"
	"github.com/ai-stack/stackctl/internal/initializer"
	"github.com/ai-stack/stackctl/internal/logging"
)

// Script builds a Setup that runs an operator-supplied executable. The script
// is opaque to stackctl: it inherits the process environment overlaid with
// extraEnv (the resolved connection parameters) and its output is forwarded
// line by line through the logger.
func Script(logger *slog.Logger, path string, extraEnv env.Vars) initializer.Setup {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, path)
		cmd.Stdout = logging.NewWriter(logger)
		cmd.Stderr = logging.NewWriter(logger)

		merged := env.Merge(env.FromOS(), extraEnv)
		environ := make([]string, 0, len(merged))
		for k, v := range merged {
			environ = append(environ, k+"="+v)
		}
		cmd.Env = environ

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("setup script %q failed: %w", path, err)
		}
		return nil
	}
}
