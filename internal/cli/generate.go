package cli

import (
	"github.com/spf13/cobra"

	"github.com/ai-stack/stackctl/internal/envgen"
	"github.com/ai-stack/stackctl/internal/secrets"
)

// newGenerateCommand creates the "generate" subcommand that derives the
// environment file for one stack launch.
func newGenerateCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve the template and secrets into the generated environment file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			store, err := secrets.NewStore(opts.Paths.DerivedDir)
			if err != nil {
				return err
			}

			environment, warnings, err := envgen.Resolve(logger, envgen.Options{
				TemplatePath:   opts.Paths.Template,
				DescriptorPath: opts.Paths.Descriptor,
				Provided:       secrets.NewDirSource(opts.Paths.SecretsDir),
				Derived:        store,
			})
			if err != nil {
				return err
			}

			if err := environment.WriteFile(opts.Paths.Output); err != nil {
				return err
			}

			logger.Info("environment generated",
				"path", opts.Paths.Output,
				"keys", len(environment.Keys()),
				"warnings", len(warnings),
			)
			return nil
		},
	}
	return cmd
}
