// Package export persists a run's outputs: one CSV per table plus a single
// XLSX close report. Files are written to a temp path and renamed so a normal
// completion never leaves half-written files behind.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/finclose-org/finclose/internal/pipeline"
)

// Output file names within the curated directory.
const (
	FactFile          = "fact_transactions.csv"
	AccountsFile      = "dim_accounts.csv"
	KPIFile           = "kpi_monthly.csv"
	ExceptionsFile    = "dq_exceptions.csv"
	SummaryFile       = "dq_summary.csv"
	ParseFailuresFile = "parse_failures.csv"
	WorkbookFile      = "close_report.xlsx"
)

// Writer writes run outputs into a curated directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: filepath.Clean(dir)}
}

// WriteAll writes every output table and the close-report workbook. Outputs
// are written even when the gate decision is FAIL; only a fatal ConfigError
// upstream prevents any writing at all.
func (w *Writer) WriteAll(out pipeline.Outputs) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tables := []struct {
		name string
		rows [][]string
	}{
		{FactFile, factTable(out.Fact)},
		{AccountsFile, accountsTable(out.Accounts)},
		{KPIFile, kpiTable(out.KPI)},
		{ExceptionsFile, exceptionsTable(out.Exceptions)},
		{SummaryFile, summaryTable(out.Summary)},
		{ParseFailuresFile, parseFailuresTable(out.ParseFailures)},
	}

	written := make([]string, 0, len(tables)+1)
	for _, table := range tables {
		path := filepath.Join(w.dir, table.name)
		if err := writeCSV(path, table.rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	workbookPath := filepath.Join(w.dir, WorkbookFile)
	if err := writeWorkbook(workbookPath, out); err != nil {
		return written, err
	}
	written = append(written, workbookPath)

	return written, nil
}

func writeCSV(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

func factTable(fact []domain.Transaction) [][]string {
	rows := [][]string{{
		"txn_id", "date", "entity_id", "entity_key", "source", "document_id",
		"account_id", "account_key", "currency", "amount", "rate", "amount_base",
		"description", "tags",
	}}
	for _, txn := range fact {
		rate, amountBase := "", ""
		if txn.Rate != nil {
			rate = txn.Rate.String()
		}
		if txn.AmountBase != nil {
			amountBase = txn.AmountBase.String()
		}
		rows = append(rows, []string{
			txn.TxnID,
			txn.PostingDate.Format("2006-01-02"),
			txn.EntityID,
			txn.EntityKey,
			txn.Source,
			txn.DocumentID,
			txn.AccountID,
			txn.AccountKey,
			txn.Currency,
			txn.Amount.String(),
			rate,
			amountBase,
			txn.Description,
			joinTags(txn.Tags),
		})
	}
	return rows
}

func accountsTable(accounts []domain.Account) [][]string {
	rows := [][]string{{"account_code", "account_name", "account_type"}}
	for _, account := range accounts {
		rows = append(rows, []string{account.AccountID, account.AccountName, string(account.AccountType)})
	}
	return rows
}

func kpiTable(kpis []domain.MonthlyKPI) [][]string {
	rows := [][]string{{
		"entity_id", "month", "Asset", "COGS", "Expense", "Revenue",
		"gross_profit", "operating_profit",
	}}
	for _, row := range kpis {
		rows = append(rows, []string{
			row.EntityID,
			row.Month,
			row.Asset.String(),
			row.COGS.String(),
			row.Expense.String(),
			row.Revenue.String(),
			row.GrossProfit.String(),
			row.OperatingProfit.String(),
		})
	}
	return rows
}

func exceptionsTable(exceptions []domain.Exception) [][]string {
	rows := [][]string{{"rule_name", "severity", "entity_id", "account_id", "posting_date", "source", "message"}}
	for _, exc := range exceptions {
		rows = append(rows, []string{
			string(exc.Rule),
			string(exc.Severity),
			exc.Ref.EntityID,
			exc.Ref.AccountID,
			exc.Ref.PostingDate,
			exc.Ref.Source,
			exc.Message,
		})
	}
	return rows
}

func summaryTable(summary []domain.SummaryRow) [][]string {
	rows := [][]string{{"rule_name", "severity", "count_failed", "count_evaluated", "status"}}
	for _, row := range summary {
		rows = append(rows, []string{
			string(row.Rule),
			string(row.Severity),
			fmt.Sprintf("%d", row.CountFailed),
			fmt.Sprintf("%d", row.CountEvaluated),
			string(row.Status),
		})
	}
	return rows
}

func parseFailuresTable(failures []domain.ParseFailure) [][]string {
	rows := [][]string{{"source", "line", "message"}}
	for _, failure := range failures {
		rows = append(rows, []string{failure.Source, fmt.Sprintf("%d", failure.Line), failure.Message})
	}
	return rows
}

func joinTags(tags []domain.Tag) string {
	out := ""
	for i, tag := range tags {
		if i > 0 {
			out += ","
		}
		out += string(tag)
	}
	return out
}
