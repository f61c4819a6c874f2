package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finclose-org/finclose/internal/config"
	"github.com/finclose-org/finclose/internal/db"
	"github.com/finclose-org/finclose/internal/domain"
	"github.com/finclose-org/finclose/internal/export"
	"github.com/finclose-org/finclose/internal/ingestion"
	"github.com/finclose-org/finclose/internal/logger"
	"github.com/finclose-org/finclose/internal/pipeline"
	"github.com/finclose-org/finclose/internal/repository"
)

func main() {
	log := logger.New()

	configPath := "."
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	inputs, err := loadInputs(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load inputs")
	}

	ctx := context.Background()
	outputs, status, err := pipeline.Run(ctx, log, inputs, cfg)
	if err != nil {
		// Fatal ConfigError: abort before writing any output.
		log.Fatal().Err(err).Msg("close run aborted")
	}

	writer := export.NewWriter(filepath.Join(cfg.CuratedDir, cfg.Month))
	written, err := writer.WriteAll(outputs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to write outputs")
	}
	for _, path := range written {
		log.Info().Str("path", path).Msg("wrote output")
	}

	if cfg.Warehouse.Enabled {
		if err := persistToWarehouse(ctx, cfg, outputs, status); err != nil {
			log.Fatal().Err(err).Msg("failed to persist run to warehouse")
		}
		log.Info().Str("run_id", outputs.Run.RunID).Msg("persisted run to warehouse")
	}

	if status == domain.RunFail {
		log.Error().Str("fail_on", string(cfg.FailOn)).Msg("data-quality gate failed; outputs written for triage")
		os.Exit(1)
	}
}

func loadInputs(cfg config.Config) (pipeline.Inputs, error) {
	sales, err := readTable(filepath.Join(cfg.RawDir, "sales.csv"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	expenses, err := readTable(filepath.Join(cfg.RawDir, "expenses.csv"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	payroll, err := readTable(filepath.Join(cfg.RawDir, "payroll.csv"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	inventory, err := readTable(filepath.Join(cfg.RawDir, "inventory_movements.csv"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	fxRates, err := readTable(filepath.Join(cfg.RawDir, "fx_rates.csv"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	entityDim, err := readTable(filepath.Join(cfg.ReferenceDir, "entities.csv"))
	if err != nil {
		return pipeline.Inputs{}, err
	}
	accountDim, err := readTable(filepath.Join(cfg.ReferenceDir, "chart_of_accounts.csv"))
	if err != nil {
		return pipeline.Inputs{}, err
	}

	entities, err := ingestion.LoadEntities(entityDim)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	accounts, err := ingestion.LoadAccounts(accountDim)
	if err != nil {
		return pipeline.Inputs{}, err
	}
	rates, err := ingestion.LoadRates(fxRates)
	if err != nil {
		return pipeline.Inputs{}, err
	}

	var raw []domain.RawRecord
	raw = append(raw, ingestion.MapSales(sales)...)
	raw = append(raw, ingestion.MapExpenses(expenses)...)
	raw = append(raw, ingestion.MapPayroll(payroll, cfg.Month)...)
	inventoryRecords, parseFailures := ingestion.MapInventory(inventory)
	raw = append(raw, inventoryRecords...)

	return pipeline.Inputs{
		Raw:           raw,
		ParseFailures: parseFailures,
		Entities:      entities,
		Accounts:      accounts,
		Rates:         rates,
	}, nil
}

func readTable(path string) (ingestion.Table, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return ingestion.Table{}, domain.NewConfigError(fmt.Sprintf("unreadable input file %s", path), err)
	}
	table, err := ingestion.ReadTable(path, payload)
	if err != nil {
		return ingestion.Table{}, domain.NewConfigError(fmt.Sprintf("unparseable input file %s", path), err)
	}
	return table, nil
}

func persistToWarehouse(ctx context.Context, cfg config.Config, outputs pipeline.Outputs, status domain.RunStatus) error {
	if err := db.RunMigrations(cfg.Warehouse.Database); err != nil {
		return err
	}
	conn, err := db.NewConnection(ctx, cfg.Warehouse.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	warehouse := repository.NewPostgresWarehouse(conn)
	return warehouse.SaveRun(ctx, repository.RunRecord{
		Run:        outputs.Run,
		Status:     status,
		Fact:       outputs.Fact,
		KPI:        outputs.KPI,
		Exceptions: outputs.Exceptions,
		Summary:    outputs.Summary,
	})
}
