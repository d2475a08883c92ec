// fluxo-seed fills the local SQLite ledger with a small demo dataset so
// the dashboard can be exercised without the ERP-fed Postgres instance.
// When AMQP is configured it also announces the refresh so a running
// server drops its memoized reports.
package main

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"fluxo/internal/amqp"
	"fluxo/internal/config"
	"fluxo/internal/core"
	applog "fluxo/internal/log"
	"fluxo/internal/storage"
)

func main() {
	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: applog.ComponentSeed,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite ledger", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	today := core.DateOnly(time.Now())
	payables := []core.Payable{
		{DocumentNumber: "NF-2201", DueDate: today.AddDate(0, -3, 2), Amount: dec("2140.90"), CategoryCode: "CAT01", SupplierCode: "F001", Status: "ABERTO"},
		{DocumentNumber: "NF-2202", DueDate: today.AddDate(0, -2, -4), Amount: dec("860.00"), CategoryCode: "CAT02", SupplierCode: "F002", Status: "ABERTO"},
		{DocumentNumber: "NF-2203", DueDate: today.AddDate(0, -1, 0), Amount: dec("1275.35"), CategoryCode: "CAT01", SupplierCode: "F003", Status: "ABERTO"},
		{DocumentNumber: "NF-2204", DueDate: today.AddDate(0, 0, -8), Amount: dec("433.10"), CategoryCode: "CAT03", SupplierCode: "F001", Status: "ABERTO"},
		{DocumentNumber: "NF-2205", DueDate: today.AddDate(0, 0, 15), Amount: dec("5210.00"), CategoryCode: "CAT02", SupplierCode: "F002", Status: "ABERTO"},
		{DocumentNumber: "NF-2206", DueDate: today.AddDate(0, 1, 0), Amount: dec("990.45"), CategoryCode: "CAT03", SupplierCode: "F003", Status: "ABERTO"},
	}
	receivables := []core.Receivable{
		{DueDate: today.AddDate(0, -1, 5), Amount: dec("7300.00")},
		{DueDate: today.AddDate(0, 0, 12), Amount: dec("2450.80")},
		{DueDate: today.AddDate(0, 1, 3), Amount: dec("1980.00")},
	}
	categories := map[string]string{
		"CAT01": "Fornecedores de insumos",
		"CAT02": "Serviços",
		"CAT03": "Impostos",
	}
	suppliers := map[string]string{
		"F001": "Distribuidora Alfa Ltda",
		"F002": "Beta Serviços ME",
		"F003": "Gama Comércio SA",
	}

	if err := store.Seed(ctx, payables, receivables, categories, suppliers); err != nil {
		logger.Error("Failed to seed ledger", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Ledger seeded",
		"path", cfg.SQLiteDBPath,
		"payables", len(payables),
		"receivables", len(receivables))

	if cfg.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Ledger seeded but refresh not announced", applog.FieldError, err)
		return
	}
	defer client.Close()
	if err := client.PublishLedgerRefresh(ctx, "fluxo-seed", "contapagar", "contareceber"); err != nil {
		logger.Warn("Ledger seeded but refresh not announced", applog.FieldError, err)
	}
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
