// Package quality evaluates the fixed, ordered data-quality rule set over a
// run's resolved transactions and aggregated KPI rows.
package quality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finclose-org/finclose/internal/domain"
)

// Input is the materialized view the engine evaluates. Both slices must be
// complete before evaluation starts; the engine is a batch reducer, not a
// streaming operator.
type Input struct {
	Transactions []domain.Transaction
	KPIRows      []domain.MonthlyKPI
}

type rule struct {
	name     domain.RuleName
	severity domain.Severity
	eval     func(in Input) ([]domain.Exception, int)
}

// Engine runs the rule set. Rule names, order, and severities are fixed;
// only the run's fail-on threshold is configurable, and that belongs to the
// gate, not to the rules.
type Engine struct {
	rules []rule
}

// NewEngine builds the engine with the fixed rule list.
func NewEngine() *Engine {
	return &Engine{rules: []rule{
		{domain.RuleNullCheck, domain.SeverityError, nullCheck},
		{domain.RuleDuplicateCheck, domain.SeverityWarn, duplicateCheck},
		{domain.RuleReferentialCheck, domain.SeverityError, referentialCheck},
		{domain.RuleFXCheck, domain.SeverityError, fxCheck},
		{domain.RuleKPISanityCheck, domain.SeverityWarn, kpiSanityCheck},
	}}
}

// Evaluate runs every rule in order and returns the exception set plus the
// per-rule summary. A rule fails in the summary iff it produced at least one
// exception, independent of its severity.
func (e *Engine) Evaluate(in Input) ([]domain.Exception, []domain.SummaryRow) {
	var exceptions []domain.Exception
	summary := make([]domain.SummaryRow, 0, len(e.rules))

	for _, r := range e.rules {
		found, evaluated := r.eval(in)
		for i := range found {
			found[i].Rule = r.name
			found[i].Severity = r.severity
		}
		exceptions = append(exceptions, found...)

		status := domain.RuleStatusPass
		if len(found) > 0 {
			status = domain.RuleStatusFail
		}
		summary = append(summary, domain.SummaryRow{
			Rule:           r.name,
			Severity:       r.severity,
			CountFailed:    len(found),
			CountEvaluated: evaluated,
			Status:         status,
		})
	}

	return exceptions, summary
}

func rowRef(txn domain.Transaction) domain.RowRef {
	ref := domain.RowRef{
		EntityID:  txn.EntityID,
		AccountID: txn.AccountID,
		Source:    txn.Source,
	}
	if !txn.PostingDate.IsZero() {
		ref.PostingDate = txn.PostingDate.Format("2006-01-02")
	}
	return ref
}

// nullCheck flags rows missing a required field. Conformance normally rejects
// such rows upstream, so findings here indicate a broken source adapter.
func nullCheck(in Input) ([]domain.Exception, int) {
	var exceptions []domain.Exception
	for _, txn := range in.Transactions {
		var missing []string
		if txn.EntityID == "" {
			missing = append(missing, "entity_id")
		}
		if txn.AccountID == "" {
			missing = append(missing, "account_id")
		}
		if txn.PostingDate.IsZero() {
			missing = append(missing, "posting_date")
		}
		if len(missing) == 0 {
			continue
		}
		exceptions = append(exceptions, domain.Exception{
			Ref:     rowRef(txn),
			Message: "missing required fields: " + strings.Join(missing, ", "),
		})
	}
	return exceptions, len(in.Transactions)
}

// duplicateCheck flags groups of exact duplicates on
// (entity_id, account_id, posting_date, amount, source). Duplicates are
// flagged, never removed; removal is an explicit policy decision left to the
// orchestrator.
func duplicateCheck(in Input) ([]domain.Exception, int) {
	groups := make(map[string][]domain.Transaction)
	for _, txn := range in.Transactions {
		key := strings.Join([]string{
			txn.EntityID,
			txn.AccountID,
			txn.PostingDate.Format("2006-01-02"),
			txn.Amount.String(),
			txn.Source,
		}, "|")
		groups[key] = append(groups[key], txn)
	}

	keys := make([]string, 0, len(groups))
	for key, members := range groups {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var exceptions []domain.Exception
	for _, key := range keys {
		members := groups[key]
		exceptions = append(exceptions, domain.Exception{
			Ref:     rowRef(members[0]),
			Message: fmt.Sprintf("%d identical rows share (entity_id, account_id, posting_date, amount, source)", len(members)),
		})
	}
	return exceptions, len(in.Transactions)
}

// referentialCheck flags rows whose entity or account key did not resolve.
func referentialCheck(in Input) ([]domain.Exception, int) {
	var exceptions []domain.Exception
	for _, txn := range in.Transactions {
		var orphans []string
		if txn.HasTag(domain.TagOrphanEntity) {
			orphans = append(orphans, fmt.Sprintf("entity_id %q not in entity dimension", txn.EntityID))
		}
		if txn.HasTag(domain.TagOrphanAccount) {
			orphans = append(orphans, fmt.Sprintf("account_id %q not in account dimension", txn.AccountID))
		}
		if len(orphans) == 0 {
			continue
		}
		exceptions = append(exceptions, domain.Exception{
			Ref:     rowRef(txn),
			Message: strings.Join(orphans, "; "),
		})
	}
	return exceptions, len(in.Transactions)
}

// fxCheck flags rows whose currency had no published rate. Missing FX is
// always critical: the row cannot participate in base-currency aggregation.
func fxCheck(in Input) ([]domain.Exception, int) {
	var exceptions []domain.Exception
	for _, txn := range in.Transactions {
		if !txn.HasTag(domain.TagFXMissing) {
			continue
		}
		exceptions = append(exceptions, domain.Exception{
			Ref:     rowRef(txn),
			Message: fmt.Sprintf("no published rate for currency %s", txn.Currency),
		})
	}
	return exceptions, len(in.Transactions)
}

// kpiSanityCheck flags aggregated KPI rows that violate the account-type sign
// convention. A violation suggests upstream data corruption rather than a
// fatal condition, hence WARN.
func kpiSanityCheck(in Input) ([]domain.Exception, int) {
	var exceptions []domain.Exception
	for _, row := range in.KPIRows {
		var violations []string
		if row.Revenue.IsNegative() {
			violations = append(violations, fmt.Sprintf("Revenue is negative (%s)", row.Revenue))
		}
		if row.Expense.IsPositive() {
			violations = append(violations, fmt.Sprintf("Expense is positive (%s)", row.Expense))
		}
		if len(violations) == 0 {
			continue
		}
		exceptions = append(exceptions, domain.Exception{
			Ref: domain.RowRef{
				EntityID:    row.EntityID,
				PostingDate: row.Month,
			},
			Message: strings.Join(violations, "; "),
		})
	}
	return exceptions, len(in.KPIRows)
}
