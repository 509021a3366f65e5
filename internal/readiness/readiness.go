// Package readiness polls stateful services until their query interface
// accepts real requests. Probes speak each service's native protocol; a
// generic liveness check can report "up" well before queries succeed.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrWaitTimeout indicates the readiness window elapsed before the service
// accepted a query. It is distinct from a context cancellation.
var ErrWaitTimeout = errors.New("service did not become ready within the readiness window")

// Prober issues one protocol-level query against a target service.
type Prober interface {
	// Probe returns nil once the service answers a real query.
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to the Prober interface.
type ProbeFunc func(ctx context.Context) error

// Probe implements Prober.
func (f ProbeFunc) Probe(ctx context.Context) error { return f(ctx) }

// Policy bounds the readiness wait. A zero MaxElapsedTime disables the bound
// and restores indefinite polling for operators who want it.
type Policy struct {
	// InitialInterval is the delay before the second attempt.
	InitialInterval time.Duration
	// MaxInterval caps the backoff growth between attempts.
	MaxInterval time.Duration
	// MaxElapsedTime bounds the whole wait; 0 means unbounded.
	MaxElapsedTime time.Duration
}

// DefaultPolicy returns the standard bounded wait used by the initializers.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 5 * time.Second,
		MaxInterval:     30 * time.Second,
		MaxElapsedTime:  10 * time.Minute,
	}
}

// Wait polls prober under the given policy until it succeeds, the policy
// expires, or ctx is cancelled. Every failed attempt is logged.
func Wait(ctx context.Context, logger *slog.Logger, service string, prober Prober, policy Policy) error {
	b := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		b.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		b.MaxInterval = policy.MaxInterval
	}
	b.MaxElapsedTime = policy.MaxElapsedTime
	b.Reset()

	attempt := 0
	operation := func() error {
		attempt++
		return prober.Probe(ctx)
	}
	notify := func(err error, next time.Duration) {
		logger.Info("service not ready yet",
			"service", service,
			"attempt", attempt,
			"retry_in", next.Round(time.Millisecond),
			"error", err,
		)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
	if err == nil {
		logger.Info("service ready", "service", service, "attempts", attempt)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("readiness wait for %s interrupted: %w", service, ctxErr)
	}
	return fmt.Errorf("%w: %s: last probe error: %v", ErrWaitTimeout, service, err)
}
