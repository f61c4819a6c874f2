// Package resolve validates fact rows against the dimension tables and
// assigns surrogate keys.
package resolve

import (
	"github.com/finclose-org/finclose/internal/domain"
	"github.com/google/uuid"
)

type entityEntry struct {
	key string
	dim domain.Entity
}

type accountEntry struct {
	key string
	dim domain.Account
}

// Resolver holds keyed indexes over the dimension tables. The indexes are
// built once at construction and are read-only afterwards, so a resolver is
// safe to share across parallel workers.
type Resolver struct {
	entities map[string]entityEntry
	accounts map[string]accountEntry
}

// New builds the dimension indexes and assigns a surrogate key to every
// dimension row. Keys are name-based UUIDs derived from the natural key, so
// rerunning over the same dimensions yields identical fact output.
func New(entities []domain.Entity, accounts []domain.Account) *Resolver {
	r := &Resolver{
		entities: make(map[string]entityEntry, len(entities)),
		accounts: make(map[string]accountEntry, len(accounts)),
	}
	for _, entity := range entities {
		r.entities[entity.EntityID] = entityEntry{key: surrogateKey("entity", entity.EntityID), dim: entity}
	}
	for _, account := range accounts {
		r.accounts[account.AccountID] = accountEntry{key: surrogateKey("account", account.AccountID), dim: account}
	}
	return r
}

func surrogateKey(dimension, naturalKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(dimension+":"+naturalKey)).String()
}

// Resolve looks up the transaction's entity and account keys. Lookup is O(1)
// per row. On failure the row is retained and tagged; the missing surrogate
// key is left absent rather than set to a sentinel.
func (r *Resolver) Resolve(txn domain.Transaction) domain.Transaction {
	if entry, ok := r.entities[txn.EntityID]; ok {
		txn = txn.WithEntityKey(entry.key)
	} else {
		txn = txn.WithTag(domain.TagOrphanEntity)
	}

	if entry, ok := r.accounts[txn.AccountID]; ok {
		txn = txn.WithAccountKey(entry.key, entry.dim.AccountType)
	} else {
		txn = txn.WithTag(domain.TagOrphanAccount)
	}

	return txn
}

// EntityKey returns the surrogate key assigned to a natural entity id.
func (r *Resolver) EntityKey(entityID string) (string, bool) {
	entry, ok := r.entities[entityID]
	return entry.key, ok
}

// AccountKey returns the surrogate key assigned to a natural account id.
func (r *Resolver) AccountKey(accountID string) (string, bool) {
	entry, ok := r.accounts[accountID]
	return entry.key, ok
}
