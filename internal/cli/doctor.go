package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ai-stack/stackctl/internal/compose"
	"github.com/ai-stack/stackctl/internal/env"
	"github.com/ai-stack/stackctl/internal/secrets"
)

// newDoctorCommand creates the "doctor" subcommand that runs bootstrap
// preflight checks without writing anything.
func newDoctorCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run bootstrap preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			tpl, err := env.LoadTemplate(opts.Paths.Template)
			if err != nil {
				return fmt.Errorf("template check failed: %w", err)
			}
			logger.Info("template ok", "path", opts.Paths.Template, "keys", len(tpl.Keys()))

			entries, err := secrets.NewDirSource(opts.Paths.SecretsDir).List()
			if err != nil {
				return fmt.Errorf("secrets check failed: %w", err)
			}
			for _, entry := range entries {
				if !tpl.Has(entry.Key) {
					logger.Warn("secret maps to no template key", "key", entry.Key, "file", entry.Origin)
				}
			}
			logger.Info("secrets ok", "dir", opts.Paths.SecretsDir, "provided", len(entries))

			descriptor, err := compose.Load(opts.Paths.Descriptor)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					logger.Warn("orchestration descriptor not found", "path", opts.Paths.Descriptor)
					return nil
				}
				return fmt.Errorf("descriptor check failed: %w", err)
			}
			logger.Info("descriptor ok",
				"path", opts.Paths.Descriptor,
				"services", descriptor.ServiceNames(),
				"referenced_vars", len(descriptor.RequiredVariables()),
			)

			for _, name := range descriptor.RequiredVariables() {
				if !tpl.Has(name) {
					logger.Warn("descriptor references a variable the template does not declare", "var", name)
				}
			}

			logger.Info("doctor checks completed successfully")
			return nil
		},
	}
	return cmd
}
