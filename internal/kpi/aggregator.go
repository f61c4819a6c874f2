// Package kpi aggregates resolved transactions into monthly KPI rows.
package kpi

import (
	"sort"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/shopspring/decimal"
)

type groupKey struct {
	entityID string
	month    string
}

// Aggregate groups resolved transactions by (entity, month) and sums
// base-currency amounts into the account-type buckets.
//
// Rows tagged FX_MISSING are excluded: without a base-currency amount they
// cannot be summed. So are rows whose account type is unknown (orphan
// accounts) — both conditions already carry an ERROR-severity DQ finding.
// All arithmetic is fixed-precision decimal; rerunning over the same input
// yields bit-identical rows.
func Aggregate(txns []domain.Transaction) []domain.MonthlyKPI {
	buckets := make(map[groupKey]*domain.MonthlyKPI)

	for _, txn := range txns {
		if txn.HasTag(domain.TagFXMissing) || txn.AmountBase == nil {
			continue
		}

		key := groupKey{entityID: txn.EntityID, month: txn.Month()}
		row, ok := buckets[key]
		if !ok {
			row = &domain.MonthlyKPI{
				EntityID: key.entityID,
				Month:    key.month,
				Asset:    decimal.Zero,
				COGS:     decimal.Zero,
				Expense:  decimal.Zero,
				Revenue:  decimal.Zero,
			}
			buckets[key] = row
		}

		amount := *txn.AmountBase
		switch txn.AccountType {
		case domain.AccountTypeAsset:
			row.Asset = row.Asset.Add(amount)
		case domain.AccountTypeCOGS:
			row.COGS = row.COGS.Add(amount)
		case domain.AccountTypeExpense:
			row.Expense = row.Expense.Add(amount)
		case domain.AccountTypeRevenue:
			row.Revenue = row.Revenue.Add(amount)
		}
	}

	rows := make([]domain.MonthlyKPI, 0, len(buckets))
	for _, row := range buckets {
		// COGS and Expense are stored as negative sums, so the derived
		// metrics are plain additions.
		row.GrossProfit = row.Revenue.Add(row.COGS)
		row.OperatingProfit = row.GrossProfit.Add(row.Expense)
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EntityID != rows[j].EntityID {
			return rows[i].EntityID < rows[j].EntityID
		}
		return rows[i].Month < rows[j].Month
	})

	return rows
}
