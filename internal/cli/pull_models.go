package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai-stack/stackctl/internal/config"
	"github.com/ai-stack/stackctl/internal/env"
	"github.com/ai-stack/stackctl/internal/initializer"
	"github.com/ai-stack/stackctl/internal/readiness"
	"github.com/ai-stack/stackctl/internal/setup"
)

// newPullModelsCommand creates the "pull-models" subcommand: the batch
// initializer that downloads every configured model artifact, isolating
// per-model failures.
func newPullModelsCommand(opts *Options) *cobra.Command {
	var modelList string

	cmd := &cobra.Command{
		Use:   "pull-models",
		Short: "Pull every configured Ollama model, reporting per-model outcomes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			vars, err := env.LoadEnvFile(opts.Paths.Output)
			if err != nil {
				return fmt.Errorf("load generated environment %q (run \"stackctl generate\" first): %w", opts.Paths.Output, err)
			}

			baseURL, err := config.OllamaBaseURL(vars)
			if err != nil {
				return err
			}

			list := modelList
			if list == "" {
				envCfg, err := loadPullEnv()
				if err != nil {
					return err
				}
				list = envCfg.Models
				if list == "" {
					list = vars["OLLAMA_PULL_MODELS"]
				}
			}
			models := initializer.ParseUnitList(list)
			if len(models) == 0 {
				logger.Info("no models configured, nothing to pull")
				return nil
			}

			// The API must answer before pulls begin; a generic liveness
			// check is not enough for large first-time downloads.
			prober := readiness.NewHTTPProber(baseURL + "/api/version")
			if err := readiness.Wait(cmd.Context(), logger, "ollama", prober, readiness.DefaultPolicy()); err != nil {
				return err
			}

			client := setup.NewOllamaClient(logger, baseURL)
			report := initializer.RunBatch(cmd.Context(), logger, client.PullUnits(models))

			for _, res := range report.Results {
				if res.Err != nil {
					logger.Warn("model pull failed", "model", res.Name, "error", res.Err)
				} else {
					logger.Info("model available", "model", res.Name)
				}
			}
			return report.Err()
		},
	}

	cmd.Flags().StringVar(&modelList, "models", "", "Comma-separated model list (defaults to OLLAMA_PULL_MODELS)")

	return cmd
}
