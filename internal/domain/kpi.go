package domain

import "github.com/shopspring/decimal"

// MonthlyKPI is one aggregated row per (entity, month).
//
// Sign convention: Expense and COGS are negative sums, Revenue and Asset
// positive sums, so the derived metrics are plain additions:
// gross_profit = Revenue + COGS, operating_profit = gross_profit + Expense.
type MonthlyKPI struct {
	EntityID        string
	Month           string
	Asset           decimal.Decimal
	COGS            decimal.Decimal
	Expense         decimal.Decimal
	Revenue         decimal.Decimal
	GrossProfit     decimal.Decimal
	OperatingProfit decimal.Decimal
}
