package repository

import (
	"context"
	"fmt"

	"github.com/finclose-org/finclose/internal/db"
	"github.com/finclose-org/finclose/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PostgresWarehouse writes run outputs to Postgres. All tables for one run
// are written inside a single transaction, so a failed save leaves no
// partial run behind.
type PostgresWarehouse struct {
	conn *db.Connection
}

// NewPostgresWarehouse creates a warehouse repository over an open
// connection pool.
func NewPostgresWarehouse(conn *db.Connection) *PostgresWarehouse {
	return &PostgresWarehouse{conn: conn}
}

// SaveRun persists the run header and every output table.
func (w *PostgresWarehouse) SaveRun(ctx context.Context, record RunRecord) error {
	return w.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO close_runs (run_id, month, base_currency, fail_on, rate_table_version, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, record.Run.RunID, record.Run.Month, record.Run.BaseCurrency,
			string(record.Run.FailOn), record.Run.RateTableVersion, string(record.Status))
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for _, txn := range record.Fact {
			var rate, amountBase any
			if txn.Rate != nil {
				rate = txn.Rate.String()
			}
			if txn.AmountBase != nil {
				amountBase = txn.AmountBase.String()
			}
			batch.Queue(`
				INSERT INTO fact_transactions (
					run_id, txn_id, entity_id, account_id, posting_date, amount,
					currency, source, document_id, description, rate, amount_base,
					entity_key, account_key, tags
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			`, record.Run.RunID, txn.TxnID, txn.EntityID, txn.AccountID,
				txn.PostingDate, txn.Amount.String(), txn.Currency, txn.Source,
				txn.DocumentID, txn.Description, rate, amountBase,
				txn.EntityKey, txn.AccountKey, tagStrings(txn.Tags))
		}
		for _, row := range record.KPI {
			batch.Queue(`
				INSERT INTO kpi_monthly (
					run_id, entity_id, month, asset, cogs, expense, revenue,
					gross_profit, operating_profit
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, record.Run.RunID, row.EntityID, row.Month, row.Asset.String(),
				row.COGS.String(), row.Expense.String(), row.Revenue.String(),
				row.GrossProfit.String(), row.OperatingProfit.String())
		}
		for _, exc := range record.Exceptions {
			batch.Queue(`
				INSERT INTO dq_exceptions (
					run_id, rule_name, severity, entity_id, account_id,
					posting_date, source, message
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, record.Run.RunID, string(exc.Rule), string(exc.Severity),
				exc.Ref.EntityID, exc.Ref.AccountID, exc.Ref.PostingDate,
				exc.Ref.Source, exc.Message)
		}
		for _, row := range record.Summary {
			batch.Queue(`
				INSERT INTO dq_summary (
					run_id, rule_name, severity, count_failed, count_evaluated, status
				) VALUES ($1, $2, $3, $4, $5, $6)
			`, record.Run.RunID, string(row.Rule), string(row.Severity),
				row.CountFailed, row.CountEvaluated, string(row.Status))
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert run outputs: %w", err)
			}
		}
		return results.Close()
	})
}

func tagStrings(tags []domain.Tag) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = string(tag)
	}
	return out
}

var _ WarehouseRepository = (*PostgresWarehouse)(nil)
