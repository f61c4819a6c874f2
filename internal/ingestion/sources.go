package ingestion

import (
	"fmt"
	"time"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/shopspring/decimal"
)

// Source system names as they appear in the fact output.
const (
	SourceSales     = "sales"
	SourceExpenses  = "expenses"
	SourcePayroll   = "payroll"
	SourceInventory = "inventory"
)

// Fixed account codes for sources that do not carry their own chart-of-accounts
// reference: payroll posts to net-pay expense, inventory issues post to COGS
// and receipts/adjustments to stock.
const (
	payrollAccountCode       = "61000001"
	inventoryIssueAccount    = "50000001"
	inventoryStockAccount    = "10000001"
	inventoryMovementIssue   = "issue"
	inventoryMovementReceipt = "receipt"
	inventoryMovementAdjust  = "adjustment"
)

// MapSales maps the sales extract to raw records. Amounts stay positive.
func MapSales(t Table) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(t.Rows))
	for idx, row := range t.Rows {
		records = append(records, domain.RawRecord{
			EntityID:    t.Cell(row, "entity"),
			AccountID:   t.Cell(row, "account_code"),
			Date:        t.Cell(row, "date"),
			Amount:      t.Cell(row, "amount"),
			Currency:    t.Cell(row, "currency"),
			Description: t.Cell(row, "description"),
			Source:      SourceSales,
			DocumentID:  t.Cell(row, "invoice_id"),
			Line:        idx + 2,
		})
	}
	return records
}

// MapExpenses maps the expenses extract to raw records. Expense amounts are
// supplied positive and stored negative.
func MapExpenses(t Table) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(t.Rows))
	for idx, row := range t.Rows {
		records = append(records, domain.RawRecord{
			EntityID:    t.Cell(row, "entity"),
			AccountID:   t.Cell(row, "account_code"),
			Date:        t.Cell(row, "date"),
			Amount:      negate(t.Cell(row, "amount")),
			Currency:    t.Cell(row, "currency"),
			Description: t.Cell(row, "description"),
			Source:      SourceExpenses,
			DocumentID:  t.Cell(row, "bill_id"),
			Line:        idx + 2,
		})
	}
	return records
}

// MapPayroll maps the payroll extract for the run month. Payroll has no
// per-row posting date; rows post on the last day of their month against the
// fixed payroll account, net pay stored negative.
func MapPayroll(t Table, month string) []domain.RawRecord {
	postingDate := monthEnd(month)
	var records []domain.RawRecord
	for idx, row := range t.Rows {
		if t.Cell(row, "month") != month {
			continue
		}
		employee := t.Cell(row, "employee_id")
		records = append(records, domain.RawRecord{
			EntityID:    t.Cell(row, "entity"),
			AccountID:   payrollAccountCode,
			Date:        postingDate,
			Amount:      negate(t.Cell(row, "net")),
			Currency:    t.Cell(row, "currency"),
			Description: "Payroll net",
			Source:      SourcePayroll,
			DocumentID:  employee + "_" + month,
			Line:        idx + 2,
		})
	}
	return records
}

// MapInventory maps inventory movements to raw records. The amount is
// qty x unit_cost, negated for issues; movement type picks the account.
// Rows whose quantity or cost cannot be parsed are reported as parse
// failures, not dropped silently.
func MapInventory(t Table) ([]domain.RawRecord, []domain.ParseFailure) {
	var records []domain.RawRecord
	var failures []domain.ParseFailure

	for idx, row := range t.Rows {
		line := idx + 2
		movement := t.Cell(row, "movement_type")

		var accountID string
		switch movement {
		case inventoryMovementIssue:
			accountID = inventoryIssueAccount
		case inventoryMovementReceipt, inventoryMovementAdjust:
			accountID = inventoryStockAccount
		default:
			failures = append(failures, domain.ParseFailure{
				Source:  SourceInventory,
				Line:    line,
				Message: fmt.Sprintf("unknown movement type %q", movement),
			})
			continue
		}

		qty, err := decimal.NewFromString(t.Cell(row, "qty"))
		if err != nil {
			failures = append(failures, domain.ParseFailure{
				Source:  SourceInventory,
				Line:    line,
				Message: fmt.Sprintf("invalid qty %q", t.Cell(row, "qty")),
			})
			continue
		}
		unitCost, err := decimal.NewFromString(t.Cell(row, "unit_cost"))
		if err != nil {
			failures = append(failures, domain.ParseFailure{
				Source:  SourceInventory,
				Line:    line,
				Message: fmt.Sprintf("invalid unit_cost %q", t.Cell(row, "unit_cost")),
			})
			continue
		}

		amount := qty.Mul(unitCost).Round(2)
		if movement == inventoryMovementIssue {
			amount = amount.Neg()
		}

		sku := t.Cell(row, "sku")
		date := t.Cell(row, "date")
		records = append(records, domain.RawRecord{
			EntityID:    t.Cell(row, "entity"),
			AccountID:   accountID,
			Date:        date,
			Amount:      amount.String(),
			Currency:    t.Cell(row, "currency"),
			Description: movement + " " + sku,
			Source:      SourceInventory,
			DocumentID:  sku + "_" + date,
			Line:        line,
		})
	}

	return records, failures
}

// LoadEntities reads the entity dimension. An unreadable dimension table is
// fatal for the run.
func LoadEntities(t Table) ([]domain.Entity, error) {
	if t.Column("entity_id") < 0 {
		return nil, domain.NewConfigError("entity dimension is missing the entity_id column", nil)
	}
	entities := make([]domain.Entity, 0, len(t.Rows))
	for _, row := range t.Rows {
		entities = append(entities, domain.Entity{
			EntityID: t.Cell(row, "entity_id"),
			Name:     t.Cell(row, "name"),
			Region:   t.Cell(row, "region"),
		})
	}
	return entities, nil
}

// LoadAccounts reads the chart of accounts. Account codes are kept as opaque
// strings even when they look numeric.
func LoadAccounts(t Table) ([]domain.Account, error) {
	if t.Column("account_code") < 0 {
		return nil, domain.NewConfigError("chart of accounts is missing the account_code column", nil)
	}
	accounts := make([]domain.Account, 0, len(t.Rows))
	for _, row := range t.Rows {
		accounts = append(accounts, domain.Account{
			AccountID:   t.Cell(row, "account_code"),
			AccountName: t.Cell(row, "account_name"),
			AccountType: domain.AccountType(t.Cell(row, "account_type")),
		})
	}
	return accounts, nil
}

// LoadRates reads the month-scoped FX rate table (currency, rate). A rate
// that does not parse is a corrupt rate table, fatal for the run.
func LoadRates(t Table) (map[string]decimal.Decimal, error) {
	if t.Column("currency") < 0 || t.Column("rate") < 0 {
		return nil, domain.NewConfigError("fx rate table must have currency and rate columns", nil)
	}
	rates := make(map[string]decimal.Decimal, len(t.Rows))
	for _, row := range t.Rows {
		currency := t.Cell(row, "currency")
		rate, err := decimal.NewFromString(t.Cell(row, "rate"))
		if err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("invalid fx rate for %s", currency), err)
		}
		rates[currency] = rate
	}
	return rates, nil
}

func negate(amount string) string {
	if amount == "" {
		return amount
	}
	if amount[0] == '-' {
		return amount[1:]
	}
	return "-" + amount
}

func monthEnd(month string) string {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return ""
	}
	return time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
