package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ai-stack/stackctl/internal/config"
	"github.com/ai-stack/stackctl/internal/env"
	"github.com/ai-stack/stackctl/internal/initializer"
	"github.com/ai-stack/stackctl/internal/readiness"
	"github.com/ai-stack/stackctl/internal/sentinel"
	"github.com/ai-stack/stackctl/internal/setup"
)

// initServices lists the stateful services the init command knows how to
// probe and set up.
const initServices = "postgres, redis, neo4j, minio, qdrant"

// newInitCommand creates the "init" subcommand: readiness wait plus one-time
// setup for a single stateful service.
func newInitCommand(opts *Options) *cobra.Command {
	var (
		setupScript  string
		readyTimeout time.Duration
		readyEvery   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "init <service>",
		Short: "Wait for a stateful service and run its one-time initialization",
		Long: "init checks the service's durable completion marker, waits until the service " +
			"answers real queries over its native protocol, runs its one-time setup procedure " +
			"and records completion. Known services: " + initServices + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := LoggerFromContext(cmd.Context())
			service := args[0]

			vars, err := env.LoadEnvFile(opts.Paths.Output)
			if err != nil {
				return fmt.Errorf("load generated environment %q (run \"stackctl generate\" first): %w", opts.Paths.Output, err)
			}

			policy, err := waitPolicy(cmd, readyTimeout, readyEvery)
			if err != nil {
				return err
			}

			prober, setupFn, err := buildService(logger, service, vars, setupScript)
			if err != nil {
				return err
			}

			marker := sentinel.New(filepath.Join(opts.Paths.DataDir, service), service)
			ctrl := initializer.New(logger, service, marker, prober, setupFn, policy)
			return ctrl.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&setupScript, "setup-script", "", "External setup executable to run instead of the built-in procedure")
	cmd.Flags().DurationVar(&readyTimeout, "ready-timeout", 0, "Bound on the readiness wait (0 uses default; negative values are rejected)")
	cmd.Flags().DurationVar(&readyEvery, "ready-interval", 0, "Initial interval between readiness probes")

	return cmd
}

// waitPolicy assembles the readiness policy from defaults, STACKCTL_* env
// vars and flags, in increasing precedence.
func waitPolicy(cmd *cobra.Command, timeout, interval time.Duration) (readiness.Policy, error) {
	policy := readiness.DefaultPolicy()

	envCfg, err := loadWaitEnv()
	if err != nil {
		return readiness.Policy{}, err
	}
	if envCfg.Interval > 0 {
		policy.InitialInterval = envCfg.Interval
	}
	if envCfg.MaxInterval > 0 {
		policy.MaxInterval = envCfg.MaxInterval
	}
	if envCfg.Timeout != nil {
		policy.MaxElapsedTime = *envCfg.Timeout
	}

	if interval > 0 {
		policy.InitialInterval = interval
	}
	if cmd.Flags().Changed("ready-timeout") {
		if timeout < 0 {
			return readiness.Policy{}, fmt.Errorf("ready-timeout must not be negative")
		}
		policy.MaxElapsedTime = timeout
	}
	return policy, nil
}

// buildService wires the prober and setup procedure for one service from the
// generated environment. A provided setup script always overrides the
// built-in procedure; services without one default to recording completion
// after the readiness wait.
func buildService(logger *slog.Logger, service string, vars env.Vars, script string) (readiness.Prober, initializer.Setup, error) {
	var (
		prober  readiness.Prober
		setupFn initializer.Setup
	)

	switch service {
	case "postgres":
		dsn, err := config.PostgresDSN(vars)
		if err != nil {
			return nil, nil, err
		}
		prober = readiness.NewPostgresProber(dsn)
		setupFn = setup.Postgres(logger, dsn)

	case "redis":
		addr, password, err := config.RedisTarget(vars)
		if err != nil {
			return nil, nil, err
		}
		prober = readiness.NewRedisProber(addr, password)

	case "neo4j":
		addr, _, _, err := config.Neo4jTarget(vars)
		if err != nil {
			return nil, nil, err
		}
		prober = readiness.NewNeo4jProber(addr)

	case "minio":
		url, err := config.MinioReadyURL(vars)
		if err != nil {
			return nil, nil, err
		}
		prober = readiness.NewHTTPProber(url)

	case "qdrant":
		url, err := config.QdrantReadyURL(vars)
		if err != nil {
			return nil, nil, err
		}
		prober = readiness.NewHTTPProber(url)

	default:
		return nil, nil, fmt.Errorf("unknown service %q (known: %s)", service, initServices)
	}

	if script != "" {
		setupFn = setup.Script(logger, script, vars)
	}
	if setupFn == nil {
		setupFn = func(context.Context) error {
			logger.Info("no setup procedure configured, recording readiness only", "service", service)
			return nil
		}
	}
	return prober, setupFn, nil
}
