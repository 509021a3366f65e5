// Package cli defines the command-line interface for stackctl.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ai-stack/stackctl/internal/config"
	"github.com/ai-stack/stackctl/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	Paths    config.Paths
	LogLevel logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	paths, err := config.LoadPaths()
	if err != nil {
		return err
	}

	rootOpts := &Options{
		Paths:    paths,
		LogLevel: logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackctl",
		Short: "stackctl bootstraps the AI application stack from declarative inputs",
		Long: "stackctl resolves the configuration template against provided and generated secrets, " +
			"emits the environment the stack launches with, and gates each stateful service's " +
			"one-time initialization behind protocol-level readiness checks.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Paths.Template, "template", opts.Paths.Template, "Path to the configuration template")
	cmd.PersistentFlags().StringVar(&opts.Paths.SecretsDir, "secrets-dir", opts.Paths.SecretsDir, "Directory of provided secret files")
	cmd.PersistentFlags().StringVar(&opts.Paths.DerivedDir, "derived-dir", opts.Paths.DerivedDir, "Cache directory for derived secrets")
	cmd.PersistentFlags().StringVar(&opts.Paths.Descriptor, "compose-file", opts.Paths.Descriptor, "Path to the service-orchestration descriptor")
	cmd.PersistentFlags().StringVar(&opts.Paths.Output, "env-file", opts.Paths.Output, "Path of the generated environment file")
	cmd.PersistentFlags().StringVar(&opts.Paths.DataDir, "data-dir", opts.Paths.DataDir, "Root of the per-service persistent volumes")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newGenerateCommand(opts),
		newInitCommand(opts),
		newPullModelsCommand(opts),
		newDoctorCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
