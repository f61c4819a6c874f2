package ingestion

import (
	"errors"
	"testing"
)

func TestReadTableCSV(t *testing.T) {
	payload := []byte("entity,account_code,amount\nTLM,40000001,120.50\nACM,40000002,9.99\n")

	table, err := ReadTable("sales.csv", payload)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(table.Headers) != 3 || len(table.Rows) != 2 {
		t.Fatalf("unexpected shape: %d headers, %d rows", len(table.Headers), len(table.Rows))
	}
	if got := table.Cell(table.Rows[0], "entity"); got != "TLM" {
		t.Fatalf("unexpected cell %q", got)
	}
}

func TestReadTableStripsBOM(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte("entity,amount\nTLM,1\n")...)

	table, err := ReadTable("sales.csv", payload)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if table.Headers[0] != "entity" {
		t.Fatalf("BOM leaked into header: %q", table.Headers[0])
	}
}

func TestReadTableSanitizesHeaders(t *testing.T) {
	payload := []byte("Entity ID,Account-Code,Unit.Cost,Amount,Amount\nTLM,40000001,2.5,10,20\n")

	table, err := ReadTable("sales.csv", payload)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := []string{"entity_id", "account_code", "unit_cost", "amount", "amount_2"}
	for i, header := range want {
		if table.Headers[i] != header {
			t.Fatalf("header %d: expected %q, got %q", i, header, table.Headers[i])
		}
	}
}

func TestReadTableSkipsEmptyRowsAndPads(t *testing.T) {
	payload := []byte("\n,,\nentity,amount,currency\nTLM,10\n")

	table, err := ReadTable("sales.csv", payload)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(table.Rows))
	}
	if got := table.Cell(table.Rows[0], "currency"); got != "" {
		t.Fatalf("expected short row padded with empty cells, got %q", got)
	}
}

func TestReadTableUnsupportedFormat(t *testing.T) {
	_, err := ReadTable("sales.parquet", []byte("x"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestColumnMissing(t *testing.T) {
	table := Table{Headers: []string{"entity"}}
	if table.Column("amount") != -1 {
		t.Fatalf("expected -1 for missing column")
	}
	if got := table.Cell([]string{"TLM"}, "amount"); got != "" {
		t.Fatalf("expected empty cell for missing column, got %q", got)
	}
}
