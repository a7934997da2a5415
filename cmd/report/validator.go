package report

import (
	"fmt"

	"github.com/ajkula/jsonraven/pkg/delivery"
)

// RunSummaryValidator handles validation of loaded runs
type RunSummaryValidator struct{}

// NewRunSummaryValidator creates a new run summary validator
func NewRunSummaryValidator() *RunSummaryValidator {
	return &RunSummaryValidator{}
}

// ValidateRunSummary validates a run summary structure
func (v *RunSummaryValidator) ValidateRunSummary(summary *delivery.RunSummary) error {
	if summary == nil {
		return fmt.Errorf("run summary is nil")
	}

	if summary.RunID == "" {
		return fmt.Errorf("invalid run summary: missing run ID")
	}
	if summary.Target == "" {
		return fmt.Errorf("invalid run summary: missing target")
	}

	if !summary.StartedAt.IsZero() && !summary.FinishedAt.IsZero() && summary.FinishedAt.Before(summary.StartedAt) {
		return fmt.Errorf("invalid run summary: finished before it started")
	}

	for i, r := range summary.Results {
		if r.Name == "" {
			return fmt.Errorf("invalid result %d: missing name", i)
		}
		switch r.Status {
		case delivery.StatusSent:
		case delivery.StatusError:
			if r.Error == "" {
				return fmt.Errorf("invalid result %d (%s): error status without message", i, r.Name)
			}
		default:
			return fmt.Errorf("invalid result %d (%s): unknown status %q", i, r.Name, r.Status)
		}
	}

	return nil
}

// ValidateRunSummaries validates a slice of run summaries
func (v *RunSummaryValidator) ValidateRunSummaries(summaries []delivery.RunSummary) error {
	if len(summaries) == 0 {
		return fmt.Errorf("no run results to validate")
	}

	for i := range summaries {
		if err := v.ValidateRunSummary(&summaries[i]); err != nil {
			return fmt.Errorf("validation failed for result %d: %w", i, err)
		}
	}

	return nil
}
