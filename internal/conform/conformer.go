// Package conform normalizes raw records into typed transactions. The
// conformer is a pure function of its input row plus the configured schema:
// no IO, no shared state.
package conform

import (
	"time"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/shopspring/decimal"
)

// Conformer turns raw records into conformed transactions.
//
// Identifier fields (entity, account) are opaque strings by policy: they are
// trimmed and carried through verbatim, never coerced to a numeric type,
// regardless of their literal shape.
type Conformer struct {
	dateFormats []string
}

// New creates a conformer accepting the given ordered list of date layouts.
// The first matching layout wins.
func New(dateFormats []string) *Conformer {
	formats := make([]string, len(dateFormats))
	copy(formats, dateFormats)
	return &Conformer{dateFormats: formats}
}

// Conform produces a conformed transaction or a per-row parse error. The
// caller records the failure and continues; conformance never aborts a run.
func (c *Conformer) Conform(rec domain.RawRecord) (domain.Transaction, *domain.ParseError) {
	for _, field := range [...]struct{ name, value string }{
		{"entity_id", rec.EntityID},
		{"account_id", rec.AccountID},
		{"date", rec.Date},
		{"amount", rec.Amount},
		{"currency", rec.Currency},
	} {
		if field.value == "" {
			return domain.Transaction{}, &domain.ParseError{
				Kind:   domain.ParseMissingField,
				Field:  field.name,
				Source: rec.Source,
				Line:   rec.Line,
			}
		}
	}

	postingDate, ok := c.parseDate(rec.Date)
	if !ok {
		return domain.Transaction{}, &domain.ParseError{
			Kind:   domain.ParseMalformedDate,
			Field:  "date",
			Source: rec.Source,
			Line:   rec.Line,
			Value:  rec.Date,
		}
	}

	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return domain.Transaction{}, &domain.ParseError{
			Kind:   domain.ParseTypeCoercionFailure,
			Field:  "amount",
			Source: rec.Source,
			Line:   rec.Line,
			Value:  rec.Amount,
		}
	}

	return domain.NewTransaction(
		rec.EntityID,
		rec.AccountID,
		postingDate,
		amount,
		rec.Currency,
		rec.Source,
		rec.DocumentID,
		rec.Description,
	), nil
}

func (c *Conformer) parseDate(value string) (time.Time, bool) {
	for _, layout := range c.dateFormats {
		if ts, err := time.Parse(layout, value); err == nil {
			// Normalize to a plain UTC calendar date.
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
