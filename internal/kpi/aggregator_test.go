package kpi

import (
	"reflect"
	"testing"
	"time"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/shopspring/decimal"
)

func resolvedTxn(entityID string, day int, amount string, accountType domain.AccountType) domain.Transaction {
	txn := domain.NewTransaction(
		entityID, "ACC",
		time.Date(2025, 12, day, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString(amount),
		"USD", "sales", "DOC", "",
	)
	txn = txn.WithAccountKey("key", accountType)
	rate := decimal.NewFromInt(1)
	base := decimal.RequireFromString(amount)
	txn.Rate = &rate
	txn.AmountBase = &base
	return txn
}

func TestAggregateDerivedMetrics(t *testing.T) {
	txns := []domain.Transaction{
		resolvedTxn("TLM", 1, "48129.36", domain.AccountTypeRevenue),
		resolvedTxn("TLM", 5, "-15648.55", domain.AccountTypeCOGS),
		resolvedTxn("TLM", 9, "-38682.57", domain.AccountTypeExpense),
	}

	rows := Aggregate(txns)
	if len(rows) != 1 {
		t.Fatalf("expected 1 KPI row, got %d", len(rows))
	}

	row := rows[0]
	if row.EntityID != "TLM" || row.Month != "2025-12" {
		t.Fatalf("unexpected key %s/%s", row.EntityID, row.Month)
	}
	if got := row.GrossProfit.String(); got != "32480.81" {
		t.Fatalf("gross_profit: expected 32480.81, got %s", got)
	}
	if got := row.OperatingProfit.String(); got != "-6201.76" {
		t.Fatalf("operating_profit: expected -6201.76, got %s", got)
	}
}

func TestAggregateExcludesFXMissingRows(t *testing.T) {
	missing := resolvedTxn("TLM", 2, "500", domain.AccountTypeRevenue)
	missing.Rate = nil
	missing.AmountBase = nil
	missing = missing.WithTag(domain.TagFXMissing)

	rows := Aggregate([]domain.Transaction{
		resolvedTxn("TLM", 1, "100", domain.AccountTypeRevenue),
		missing,
	})

	if len(rows) != 1 {
		t.Fatalf("expected 1 KPI row, got %d", len(rows))
	}
	if got := rows[0].Revenue.String(); got != "100" {
		t.Fatalf("expected untagged rows to be unaffected, revenue %s", got)
	}
}

func TestAggregateBucketsByAccountType(t *testing.T) {
	rows := Aggregate([]domain.Transaction{
		resolvedTxn("TLM", 1, "100", domain.AccountTypeRevenue),
		resolvedTxn("TLM", 2, "250.25", domain.AccountTypeAsset),
		resolvedTxn("TLM", 3, "-40", domain.AccountTypeCOGS),
		resolvedTxn("TLM", 4, "-30", domain.AccountTypeExpense),
		// Liability and Equity postings are not part of the KPI buckets.
		resolvedTxn("TLM", 5, "99", domain.AccountTypeLiability),
	})

	row := rows[0]
	if row.Asset.String() != "250.25" || row.COGS.String() != "-40" ||
		row.Expense.String() != "-30" || row.Revenue.String() != "100" {
		t.Fatalf("unexpected buckets %+v", row)
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	txns := []domain.Transaction{
		resolvedTxn("ZED", 1, "10", domain.AccountTypeRevenue),
		resolvedTxn("TLM", 1, "20", domain.AccountTypeRevenue),
		resolvedTxn("ACM", 1, "30", domain.AccountTypeRevenue),
	}

	first := Aggregate(txns)
	second := Aggregate(txns)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not deterministic:\n%+v\n%+v", first, second)
	}
	if first[0].EntityID != "ACM" || first[1].EntityID != "TLM" || first[2].EntityID != "ZED" {
		t.Fatalf("expected rows sorted by entity, got %+v", first)
	}
}
