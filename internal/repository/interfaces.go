package repository

import (
	"context"

	"github.com/finclose-org/finclose/internal/domain"
)

// RunRecord bundles everything persisted for one close run.
type RunRecord struct {
	Run        domain.RunContext
	Status     domain.RunStatus
	Fact       []domain.Transaction
	KPI        []domain.MonthlyKPI
	Exceptions []domain.Exception
	Summary    []domain.SummaryRow
}

// WarehouseRepository persists run outputs to the analytics warehouse. The
// warehouse sink is optional; the CSV/XLSX writer is the primary output path.
type WarehouseRepository interface {
	SaveRun(ctx context.Context, record RunRecord) error
}
