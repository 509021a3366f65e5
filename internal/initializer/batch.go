package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Unit is one independent member of a batch initialization, such as a single
// model artifact to pull.
type Unit struct {
	// Name identifies the unit in logs and the aggregate report.
	Name string
	// Run performs the unit's work.
	Run func(ctx context.Context) error
}

// UnitResult is the recorded outcome for a single unit.
type UnitResult struct {
	Name string
	Err  error
}

// BatchReport aggregates per-unit outcomes of one batch run.
type BatchReport struct {
	Results []UnitResult
}

// Failed returns the results of units that did not succeed.
func (r BatchReport) Failed() []UnitResult {
	var failed []UnitResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err summarizes the batch: nil when every unit succeeded, otherwise one
// error naming each failed unit.
func (r BatchReport) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, len(failed))
	for i, res := range failed {
		names[i] = res.Name
	}
	return fmt.Errorf("%d of %d units failed: %s", len(failed), len(r.Results), strings.Join(names, ", "))
}

// RunBatch executes every unit in order. One unit's failure is logged and
// recorded but never prevents subsequent units from running; only the
// aggregate report carries the overall outcome.
func RunBatch(ctx context.Context, logger *slog.Logger, units []Unit) BatchReport {
	report := BatchReport{Results: make([]UnitResult, 0, len(units))}
	for _, unit := range units {
		logger.Info("batch unit starting", "unit", unit.Name)
		err := unit.Run(ctx)
		if err != nil {
			logger.Warn("batch unit failed", "unit", unit.Name, "error", err)
		} else {
			logger.Info("batch unit complete", "unit", unit.Name)
		}
		report.Results = append(report.Results, UnitResult{Name: unit.Name, Err: err})
	}

	if failed := report.Failed(); len(failed) > 0 {
		logger.Warn("batch finished with failures", "total", len(report.Results), "failed", len(failed))
	} else {
		logger.Info("batch finished", "total", len(report.Results))
	}
	return report
}

// ParseUnitList splits a comma-separated list of unit identifiers, trimming
// surrounding whitespace and dropping empties, preserving textual order.
func ParseUnitList(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
