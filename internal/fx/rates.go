// Package fx converts transaction amounts to the run's base currency using a
// month-scoped rate table.
package fx

import (
	"fmt"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/shopspring/decimal"
)

// RateTable maps currency codes to their rate-to-base for one month.
type RateTable struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewRateTable validates and builds a rate table. A zero or negative rate
// means the table itself is corrupt, which is fatal for the run rather than
// a data-quality finding.
func NewRateTable(baseCurrency string, rates map[string]decimal.Decimal) (*RateTable, error) {
	table := &RateTable{
		base:  baseCurrency,
		rates: make(map[string]decimal.Decimal, len(rates)),
	}
	for currency, rate := range rates {
		if !rate.IsPositive() {
			return nil, domain.NewConfigError(
				fmt.Sprintf("fx rate for %s must be positive; got %s", currency, rate), nil)
		}
		table.rates[currency] = rate
	}
	return table, nil
}

// Base returns the base currency code.
func (rt *RateTable) Base() string {
	return rt.base
}

// Normalize annotates a transaction with its base-currency amount. The base
// currency converts at an implicit rate of 1 with no table lookup. A missing
// rate never drops the row: it is tagged FX_MISSING and passed through, to be
// surfaced by the DQ engine as an ERROR finding.
func (rt *RateTable) Normalize(txn domain.Transaction) domain.Transaction {
	if txn.Currency == rt.base {
		return txn.WithBaseAmount(decimal.NewFromInt(1), txn.Amount)
	}

	rate, ok := rt.rates[txn.Currency]
	if !ok {
		return txn.WithTag(domain.TagFXMissing)
	}
	return txn.WithBaseAmount(rate, txn.Amount.Mul(rate).Round(2))
}
