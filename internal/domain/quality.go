package domain

// Severity classifies how bad a data-quality finding is. Severity is fixed
// per rule; only the run's fail-on threshold is configurable.
type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityWarn  Severity = "WARN"
	SeverityInfo  Severity = "INFO"
)

// RuleName identifies a data-quality rule.
type RuleName string

const (
	RuleNullCheck        RuleName = "NULL_CHECK"
	RuleDuplicateCheck   RuleName = "DUPLICATE_CHECK"
	RuleReferentialCheck RuleName = "REFERENTIAL_CHECK"
	RuleFXCheck          RuleName = "FX_CHECK"
	RuleKPISanityCheck   RuleName = "KPI_SANITY_CHECK"
)

// RuleStatus is the per-rule pass/fail outcome in the DQ summary.
type RuleStatus string

const (
	RuleStatusPass RuleStatus = "PASS"
	RuleStatusFail RuleStatus = "FAIL"
)

// RowRef points a finding back at the violating row. For KPI-level findings
// PostingDate holds the aggregation month and AccountID is empty.
type RowRef struct {
	EntityID    string
	AccountID   string
	PostingDate string
	Source      string
}

// Exception is one recorded DQ finding: one row per (violating row, rule).
type Exception struct {
	Rule     RuleName
	Severity Severity
	Ref      RowRef
	Message  string
}

// SummaryRow aggregates exception counts for one rule over a run.
type SummaryRow struct {
	Rule           RuleName
	Severity       Severity
	CountFailed    int
	CountEvaluated int
	Status         RuleStatus
}

// ParseFailure records a row that could not be conformed. The row is excluded
// from downstream aggregation but the failure is part of the audit trail.
type ParseFailure struct {
	Source  string
	Line    int
	Message string
}
