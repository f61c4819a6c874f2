package resolve

import (
	"testing"
	"time"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/shopspring/decimal"
)

func testDims() ([]domain.Entity, []domain.Account) {
	entities := []domain.Entity{
		{EntityID: "TLM", Name: "Talem Ltd", Region: "EMEA"},
	}
	accounts := []domain.Account{
		{AccountID: "40000001", AccountName: "Product revenue", AccountType: domain.AccountTypeRevenue},
	}
	return entities, accounts
}

func testTxn(entityID, accountID string) domain.Transaction {
	return domain.NewTransaction(
		entityID, accountID,
		time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("10"),
		"USD", "sales", "INV-001", "",
	)
}

func TestResolveAssignsSurrogateKeys(t *testing.T) {
	r := New(testDims())

	out := r.Resolve(testTxn("TLM", "40000001"))
	if out.EntityKey == "" || out.AccountKey == "" {
		t.Fatalf("expected surrogate keys, got entity=%q account=%q", out.EntityKey, out.AccountKey)
	}
	if out.AccountType != domain.AccountTypeRevenue {
		t.Fatalf("expected account type Revenue, got %s", out.AccountType)
	}
	if len(out.Tags) != 0 {
		t.Fatalf("expected no tags, got %v", out.Tags)
	}

	entityKey, ok := r.EntityKey("TLM")
	if !ok || entityKey != out.EntityKey {
		t.Fatalf("EntityKey lookup mismatch")
	}
}

func TestResolveSurrogateKeysAreDeterministic(t *testing.T) {
	entities, accounts := testDims()
	first := New(entities, accounts).Resolve(testTxn("TLM", "40000001"))
	second := New(entities, accounts).Resolve(testTxn("TLM", "40000001"))

	if first.EntityKey != second.EntityKey || first.AccountKey != second.AccountKey {
		t.Fatalf("surrogate keys changed between runs")
	}
}

func TestResolveTagsOrphans(t *testing.T) {
	r := New(testDims())

	out := r.Resolve(testTxn("UNKNOWN", "99999999"))
	if !out.HasTag(domain.TagOrphanEntity) {
		t.Fatalf("expected ORPHAN_ENTITY tag")
	}
	if !out.HasTag(domain.TagOrphanAccount) {
		t.Fatalf("expected ORPHAN_ACCOUNT tag")
	}
	if out.EntityKey != "" || out.AccountKey != "" {
		t.Fatalf("expected absent surrogate keys, got entity=%q account=%q", out.EntityKey, out.AccountKey)
	}
}
