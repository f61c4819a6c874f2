package export

import (
	"fmt"

	"github.com/finclose-org/finclose/internal/pipeline"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook renders every output table as a sheet of one XLSX workbook,
// the close report analysts open directly.
func writeWorkbook(path string, out pipeline.Outputs) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheets := []struct {
		name string
		rows [][]string
	}{
		{"fact_transactions", factTable(out.Fact)},
		{"kpi_monthly", kpiTable(out.KPI)},
		{"dim_accounts", accountsTable(out.Accounts)},
		{"dq_exceptions", exceptionsTable(out.Exceptions)},
		{"dq_summary", summaryTable(out.Summary)},
		{"parse_failures", parseFailuresTable(out.ParseFailures)},
	}

	for idx, sheet := range sheets {
		if idx == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", sheet.name, err)
			}
		}
		if err := fillSheet(f, sheet.name, sheet.rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func fillSheet(f *excelize.File, sheet string, rows [][]string) error {
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s on %s: %w", cell, sheet, err)
			}
		}
	}
	return nil
}
