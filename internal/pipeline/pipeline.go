// Package pipeline orchestrates one monthly close run: conformance, FX
// normalization, referential resolution, DQ evaluation, KPI aggregation, and
// the gate decision.
package pipeline

import (
	"context"
	"sort"

	"github.com/finclose-org/finclose/internal/config"
	"github.com/finclose-org/finclose/internal/conform"
	"github.com/finclose-org/finclose/internal/domain"
	"github.com/finclose-org/finclose/internal/fx"
	"github.com/finclose-org/finclose/internal/gate"
	"github.com/finclose-org/finclose/internal/kpi"
	"github.com/finclose-org/finclose/internal/quality"
	"github.com/finclose-org/finclose/internal/resolve"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Inputs is the pre-loaded input set for one month: mapped raw records, the
// dimension tables, and the FX rate table. Loading is the caller's concern
// (see internal/ingestion); the pipeline itself performs no IO.
type Inputs struct {
	Raw           []domain.RawRecord
	ParseFailures []domain.ParseFailure
	Entities      []domain.Entity
	Accounts      []domain.Account
	Rates         map[string]decimal.Decimal
}

// Outputs is everything a run hands to the writer. Outputs are complete even
// when the gate decision is FAIL, so analysts can triage.
type Outputs struct {
	Run           domain.RunContext
	Fact          []domain.Transaction
	Accounts      []domain.Account
	KPI           []domain.MonthlyKPI
	Exceptions    []domain.Exception
	Summary       []domain.SummaryRow
	ParseFailures []domain.ParseFailure
	Decision      domain.RunStatus
}

// Run executes the full pipeline for one month. Row-level problems become
// tags and DQ findings; the only error this returns is a fatal ConfigError
// (corrupt rate table, unusable configuration), in which case no outputs
// should be written.
func Run(ctx context.Context, log zerolog.Logger, in Inputs, cfg config.Config) (Outputs, domain.RunStatus, error) {
	if err := ctx.Err(); err != nil {
		return Outputs{}, domain.RunFail, err
	}

	run := domain.NewRunContext(cfg.Month, cfg.BaseCurrency, cfg.FailOn, cfg.RateTableVersion)
	log = log.With().Str("run_id", run.RunID).Str("month", run.Month).Logger()
	log.Info().Int("raw_rows", len(in.Raw)).Msg("starting close run")

	rateTable, err := fx.NewRateTable(run.BaseCurrency, in.Rates)
	if err != nil {
		return Outputs{}, domain.RunFail, err
	}

	parseFailures := append([]domain.ParseFailure(nil), in.ParseFailures...)
	conformer := conform.New(cfg.DateFormats)

	conformed := make([]domain.Transaction, 0, len(in.Raw))
	outOfMonth := 0
	for _, rec := range in.Raw {
		txn, perr := conformer.Conform(rec)
		if perr != nil {
			parseFailures = append(parseFailures, domain.ParseFailure{
				Source:  perr.Source,
				Line:    perr.Line,
				Message: perr.Error(),
			})
			continue
		}
		if txn.Month() != run.Month {
			outOfMonth++
			continue
		}
		conformed = append(conformed, txn)
	}
	log.Info().
		Int("conformed", len(conformed)).
		Int("parse_failures", len(parseFailures)).
		Int("out_of_month", outOfMonth).
		Msg("conformance complete")

	resolver := resolve.New(in.Entities, in.Accounts)
	fact := make([]domain.Transaction, 0, len(conformed))
	for _, txn := range conformed {
		fact = append(fact, resolver.Resolve(rateTable.Normalize(txn)))
	}

	sort.SliceStable(fact, func(i, j int) bool {
		a, b := fact[i], fact[j]
		if !a.PostingDate.Equal(b.PostingDate) {
			return a.PostingDate.Before(b.PostingDate)
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.DocumentID < b.DocumentID
	})

	// DQ and KPI both need the full materialized fact set; everything above
	// this point has completed before they start.
	kpiRows := kpi.Aggregate(fact)
	exceptions, summary := quality.NewEngine().Evaluate(quality.Input{
		Transactions: fact,
		KPIRows:      kpiRows,
	})

	decision := gate.Decide(summary, run.FailOn)
	log.Info().
		Int("fact_rows", len(fact)).
		Int("kpi_rows", len(kpiRows)).
		Int("dq_exceptions", len(exceptions)).
		Str("decision", string(decision)).
		Msg("close run finished")

	return Outputs{
		Run:           run,
		Fact:          fact,
		Accounts:      in.Accounts,
		KPI:           kpiRows,
		Exceptions:    exceptions,
		Summary:       summary,
		ParseFailures: parseFailures,
		Decision:      decision,
	}, decision, nil
}
