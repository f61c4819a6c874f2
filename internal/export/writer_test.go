package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/finclose-org/finclose/internal/domain"
	"github.com/finclose-org/finclose/internal/pipeline"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func testOutputs() pipeline.Outputs {
	txn := domain.NewTransaction(
		"TLM", "40000001",
		time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("120.50"),
		"USD", "sales", "INV-001", "Licence renewal",
	)
	rate := decimal.NewFromInt(1)
	base := decimal.RequireFromString("120.50")
	txn.Rate = &rate
	txn.AmountBase = &base

	tagged := domain.NewTransaction(
		"TLM", "40000001",
		time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("10"),
		"XYZ", "sales", "INV-002", "",
	).WithTag(domain.TagFXMissing)

	return pipeline.Outputs{
		Run:  domain.NewRunContext("2025-12", "USD", domain.ThresholdError, "2025-12-v1"),
		Fact: []domain.Transaction{txn, tagged},
		Accounts: []domain.Account{
			{AccountID: "40000001", AccountName: "Product revenue", AccountType: domain.AccountTypeRevenue},
		},
		KPI: []domain.MonthlyKPI{{
			EntityID: "TLM", Month: "2025-12",
			Revenue: decimal.RequireFromString("120.50"),
		}},
		Exceptions: []domain.Exception{{
			Rule:     domain.RuleFXCheck,
			Severity: domain.SeverityError,
			Ref:      domain.RowRef{EntityID: "TLM", AccountID: "40000001", PostingDate: "2025-12-04", Source: "sales"},
			Message:  "no published rate for currency XYZ",
		}},
		Summary: []domain.SummaryRow{{
			Rule: domain.RuleFXCheck, Severity: domain.SeverityError,
			CountFailed: 1, CountEvaluated: 2, Status: domain.RuleStatusFail,
		}},
		ParseFailures: []domain.ParseFailure{{Source: "inventory", Line: 7, Message: "invalid qty \"three\""}},
		Decision:      domain.RunFail,
	}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func TestWriteAllProducesEveryFile(t *testing.T) {
	dir := t.TempDir()

	written, err := NewWriter(dir).WriteAll(testOutputs())
	if err != nil {
		t.Fatalf("write all: %v", err)
	}
	if len(written) != 7 {
		t.Fatalf("expected 7 files, got %d", len(written))
	}

	for _, name := range []string{
		FactFile, AccountsFile, KPIFile, ExceptionsFile, SummaryFile, ParseFailuresFile, WorkbookFile,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 7 {
		t.Fatalf("unexpected leftovers in output dir: %d entries", len(entries))
	}
}

func TestWriteAllFactContent(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir).WriteAll(testOutputs()); err != nil {
		t.Fatalf("write all: %v", err)
	}

	rows := readCSVFile(t, filepath.Join(dir, FactFile))
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "txn_id" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "TLM|sales|INV-001" {
		t.Fatalf("unexpected txn id %q", rows[1][0])
	}
	// The FX-missing row keeps empty rate/amount_base cells and its tag.
	if rows[2][10] != "" || rows[2][11] != "" {
		t.Fatalf("expected empty rate and base amount, got %q %q", rows[2][10], rows[2][11])
	}
	if rows[2][13] != string(domain.TagFXMissing) {
		t.Fatalf("expected tag column %q, got %q", domain.TagFXMissing, rows[2][13])
	}
}

func TestWriteAllExceptionsContent(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir).WriteAll(testOutputs()); err != nil {
		t.Fatalf("write all: %v", err)
	}

	rows := readCSVFile(t, filepath.Join(dir, ExceptionsFile))
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(rows))
	}
	if rows[1][0] != string(domain.RuleFXCheck) || rows[1][6] != "no published rate for currency XYZ" {
		t.Fatalf("unexpected exception row %v", rows[1])
	}
}

func TestWriteAllWorkbookSheets(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir).WriteAll(testOutputs()); err != nil {
		t.Fatalf("write all: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, WorkbookFile))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{}
	for _, sheet := range sheets {
		want[sheet] = true
	}
	for _, sheet := range []string{"fact_transactions", "kpi_monthly", "dq_exceptions", "dq_summary"} {
		if !want[sheet] {
			t.Fatalf("workbook missing sheet %q (have %v)", sheet, sheets)
		}
	}

	cell, err := f.GetCellValue("kpi_monthly", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if cell != "TLM" {
		t.Fatalf("unexpected kpi cell %q", cell)
	}
}

func TestWriteAllIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	out := testOutputs()

	if _, err := NewWriter(dir).WriteAll(out); err != nil {
		t.Fatalf("first write: %v", err)
	}
	firstFact, err := os.ReadFile(filepath.Join(dir, FactFile))
	if err != nil {
		t.Fatalf("read fact: %v", err)
	}

	if _, err := NewWriter(dir).WriteAll(out); err != nil {
		t.Fatalf("second write: %v", err)
	}
	secondFact, err := os.ReadFile(filepath.Join(dir, FactFile))
	if err != nil {
		t.Fatalf("read fact: %v", err)
	}

	if !bytes.Equal(firstFact, secondFact) {
		t.Fatalf("fact output differs between identical runs")
	}
}
