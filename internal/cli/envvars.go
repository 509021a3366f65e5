package cli

import (
	"time"

	envparse "github.com/caarlos0/env/v11"
)

// waitEnv defines readiness-wait defaults sourced from STACKCTL_* env vars.
type waitEnv struct {
	// Interval is the initial probe interval from STACKCTL_READY_INTERVAL.
	Interval time.Duration `env:"STACKCTL_READY_INTERVAL"`
	// MaxInterval caps probe backoff from STACKCTL_READY_MAX_INTERVAL.
	MaxInterval time.Duration `env:"STACKCTL_READY_MAX_INTERVAL"`
	// Timeout bounds the whole wait from STACKCTL_READY_TIMEOUT; an explicit
	// 0 restores unbounded polling.
	Timeout *time.Duration `env:"STACKCTL_READY_TIMEOUT"`
}

// loadWaitEnv parses readiness-wait settings from the process environment.
func loadWaitEnv() (waitEnv, error) {
	var w waitEnv
	if err := envparse.Parse(&w); err != nil {
		return waitEnv{}, err
	}
	return w, nil
}

// pullEnv provides model-pull inputs for the batch command.
type pullEnv struct {
	// Models is the comma-separated unit list from OLLAMA_PULL_MODELS.
	Models string `env:"OLLAMA_PULL_MODELS"`
}

// loadPullEnv parses model-pull settings from the process environment.
func loadPullEnv() (pullEnv, error) {
	var p pullEnv
	if err := envparse.Parse(&p); err != nil {
		return pullEnv{}, err
	}
	return p, nil
}
