package domain

// AccountType classifies an account for KPI bucketing.
type AccountType string

const (
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
	AccountTypeCOGS      AccountType = "COGS"
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
)

// Entity is a row of the entity dimension. Loaded once per run and read-only
// for the duration of the run.
type Entity struct {
	EntityID string
	Name     string
	Region   string
}

// Account is a row of the account dimension (the chart of accounts).
type Account struct {
	AccountID   string
	AccountName string
	AccountType AccountType
}
