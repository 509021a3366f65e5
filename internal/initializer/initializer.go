// Package initializer drives the one-time setup of a stateful service: check
// the durable completion marker, wait for query readiness, run the setup
// procedure, record completion.
package initializer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ai-stack/stackctl/internal/readiness"
	"github.com/ai-stack/stackctl/internal/sentinel"
)

// State is one step of the initializer state machine.
type State string

const (
	StateNotStarted    State = "NOT_STARTED"
	StateCheckSentinel State = "CHECK_SENTINEL"
	StateWaitingReady  State = "WAITING_READY"
	StateInitializing  State = "INITIALIZING"
	StateCompleted     State = "COMPLETED"
	StateFailed        State = "FAILED"
)

// Setup is the opaque one-time setup procedure for a service: schema, index
// and constraint creation, bucket creation, or an external script.
type Setup func(ctx context.Context) error

// Controller runs the initialization state machine for a single service.
type Controller struct {
	service string
	marker  sentinel.Marker
	prober  readiness.Prober
	setup   Setup
	policy  readiness.Policy
	logger  *slog.Logger

	state State
}

// New constructs a Controller in the NOT_STARTED state.
func New(logger *slog.Logger, service string, marker sentinel.Marker, prober readiness.Prober, setup Setup, policy readiness.Policy) *Controller {
	return &Controller{
		service: service,
		marker:  marker,
		prober:  prober,
		setup:   setup,
		policy:  policy,
		logger:  logger,
		state:   StateNotStarted,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Run drives the state machine to a terminal state. When the completion
// marker already exists the controller exits successfully without contacting
// the service at all; initialization work executes at most once per volume
// lifetime. A failed setup leaves no marker, so the next launch retries from
// scratch.
func (c *Controller) Run(ctx context.Context) error {
	c.transition(StateCheckSentinel)
	exists, err := c.marker.Exists()
	if err != nil {
		return c.fail(err)
	}
	if exists {
		c.logger.Info("already initialized, nothing to do", "service", c.service, "marker", c.marker.Path)
		c.transition(StateCompleted)
		return nil
	}

	c.transition(StateWaitingReady)
	if err := readiness.Wait(ctx, c.logger, c.service, c.prober, c.policy); err != nil {
		return c.fail(err)
	}

	c.transition(StateInitializing)
	if err := c.setup(ctx); err != nil {
		return c.fail(fmt.Errorf("setup %s: %w", c.service, err))
	}

	if err := c.marker.Write(); err != nil {
		// Setup succeeded but completion was not recorded; the next run will
		// redo setup, which must therefore stay idempotent.
		return c.fail(err)
	}

	c.transition(StateCompleted)
	c.logger.Info("initialization complete", "service", c.service, "marker", c.marker.Path)
	return nil
}

// transition records and logs a state change.
func (c *Controller) transition(next State) {
	c.logger.Debug("initializer state change", "service", c.service, "from", string(c.state), "to", string(next))
	c.state = next
}

// fail moves the controller to FAILED and returns err unchanged.
func (c *Controller) fail(err error) error {
	c.transition(StateFailed)
	return err
}
