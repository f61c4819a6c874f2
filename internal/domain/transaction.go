package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tag marks a row-level condition attached by a pipeline stage. Tagged rows
// are retained; the DQ engine turns tags into findings.
type Tag string

const (
	TagFXMissing     Tag = "FX_MISSING"
	TagOrphanEntity  Tag = "ORPHAN_ENTITY"
	TagOrphanAccount Tag = "ORPHAN_ACCOUNT"
)

// RawRecord is a source row after source-system mapping but before
// conformance. Every field is still a string; nothing has been validated.
type RawRecord struct {
	EntityID    string
	AccountID   string
	Date        string
	Amount      string
	Currency    string
	Description string
	Source      string
	DocumentID  string
	Line        int
}

// Transaction is a conformed transaction. EntityID and AccountID are opaque
// strings end to end, even when the raw value looks numeric.
//
// FX and referential resolution annotate a transaction through the With*
// methods; the conformed core fields never change after construction.
type Transaction struct {
	TxnID       string
	EntityID    string
	AccountID   string
	PostingDate time.Time
	Amount      decimal.Decimal
	Currency    string
	Source      string
	DocumentID  string
	Description string

	// FX annotations. Nil when the currency has no published rate.
	Rate       *decimal.Decimal
	AmountBase *decimal.Decimal

	// Resolver annotations. Empty string when the dimension lookup failed.
	EntityKey   string
	AccountKey  string
	AccountType AccountType

	Tags []Tag
}

// NewTransaction builds a conformed transaction with a deterministic
// transaction id derived from its business keys.
func NewTransaction(entityID, accountID string, postingDate time.Time, amount decimal.Decimal, currency, source, documentID, description string) Transaction {
	return Transaction{
		TxnID:       fmt.Sprintf("%s|%s|%s", entityID, source, documentID),
		EntityID:    entityID,
		AccountID:   accountID,
		PostingDate: postingDate,
		Amount:      amount,
		Currency:    currency,
		Source:      source,
		DocumentID:  documentID,
		Description: description,
	}
}

// WithTag returns a copy of the transaction carrying an additional tag.
// Adding the same tag twice is a no-op.
func (t Transaction) WithTag(tag Tag) Transaction {
	if t.HasTag(tag) {
		return t
	}
	tags := make([]Tag, 0, len(t.Tags)+1)
	tags = append(tags, t.Tags...)
	tags = append(tags, tag)
	t.Tags = tags
	return t
}

// WithBaseAmount returns a copy annotated with the applied FX rate and the
// resulting base-currency amount.
func (t Transaction) WithBaseAmount(rate, amountBase decimal.Decimal) Transaction {
	t.Rate = &rate
	t.AmountBase = &amountBase
	return t
}

// WithEntityKey returns a copy carrying the entity surrogate key.
func (t Transaction) WithEntityKey(key string) Transaction {
	t.EntityKey = key
	return t
}

// WithAccountKey returns a copy carrying the account surrogate key and the
// account type from the dimension row.
func (t Transaction) WithAccountKey(key string, accountType AccountType) Transaction {
	t.AccountKey = key
	t.AccountType = accountType
	return t
}

// HasTag reports whether the transaction carries the given tag.
func (t Transaction) HasTag(tag Tag) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// Month returns the transaction's posting month as YYYY-MM.
func (t Transaction) Month() string {
	return t.PostingDate.Format("2006-01")
}
