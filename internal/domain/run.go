package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Threshold is the configured fail-on policy consumed by the gate.
type Threshold string

const (
	ThresholdError Threshold = "ERROR"
	ThresholdWarn  Threshold = "WARN"
	ThresholdNever Threshold = "NEVER"
)

// ParseThreshold normalizes and validates a fail-on threshold value.
func ParseThreshold(value string) (Threshold, error) {
	switch Threshold(strings.ToUpper(strings.TrimSpace(value))) {
	case ThresholdError:
		return ThresholdError, nil
	case ThresholdWarn:
		return ThresholdWarn, nil
	case ThresholdNever:
		return ThresholdNever, nil
	default:
		return "", fmt.Errorf("fail-on must be one of ERROR, WARN, NEVER; got %q", value)
	}
}

// RunStatus is the gate's publish decision for a run.
type RunStatus string

const (
	RunPass RunStatus = "PASS"
	RunFail RunStatus = "FAIL"
)

// RunContext carries the immutable per-run settings. It is constructed once
// at run start, shared read-only by every stage, and discarded at run end.
type RunContext struct {
	RunID            string
	Month            string
	BaseCurrency     string
	FailOn           Threshold
	RateTableVersion string
}

// NewRunContext assigns a fresh run id and captures the run settings.
func NewRunContext(month, baseCurrency string, failOn Threshold, rateTableVersion string) RunContext {
	return RunContext{
		RunID:            uuid.NewString(),
		Month:            month,
		BaseCurrency:     baseCurrency,
		FailOn:           failOn,
		RateTableVersion: rateTableVersion,
	}
}
