// Package gate decides whether a run's outputs are fit to publish.
package gate

import "github.com/finclose-org/finclose/internal/domain"

// Decide applies the configured fail-on threshold to the DQ summary.
//
// The gate only reports the decision; it never suppresses or mutates
// outputs. The orchestrator acts on the result (e.g. a non-zero exit code),
// and the outputs are written either way so analysts can triage.
func Decide(summary []domain.SummaryRow, threshold domain.Threshold) domain.RunStatus {
	switch threshold {
	case domain.ThresholdNever:
		return domain.RunPass
	case domain.ThresholdWarn:
		for _, row := range summary {
			if row.CountFailed > 0 {
				return domain.RunFail
			}
		}
		return domain.RunPass
	default: // ThresholdError
		for _, row := range summary {
			if row.Severity == domain.SeverityError && row.CountFailed > 0 {
				return domain.RunFail
			}
		}
		return domain.RunPass
	}
}
