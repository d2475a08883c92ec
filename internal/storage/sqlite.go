package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fluxo/internal/core"
)

// SQLiteStore is the local/demo ledger backend. It keeps the same schema
// as the Postgres ledger (textual DD/MM/YYYY due dates, textual amounts)
// but fetches plain rows and aggregates with the core helpers, since
// SQLite lacks exact numeric SQL arithmetic.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CashFlow(ctx context.Context) (core.CashFlow, error) {
	payables, err := s.loadPayables(ctx)
	if err != nil {
		return core.CashFlow{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT valor_documento FROM contareceber`)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("query receivables: %w", err)
	}
	defer rows.Close()

	var receivables []core.Receivable
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return core.CashFlow{}, fmt.Errorf("scan receivable: %w", err)
		}
		d, err := core.ParseAmount(amount)
		if err != nil {
			return core.CashFlow{}, err
		}
		receivables = append(receivables, core.Receivable{Amount: d})
	}
	if err := rows.Err(); err != nil {
		return core.CashFlow{}, fmt.Errorf("iterate receivables: %w", err)
	}

	expenses := core.SumPayables(payables)
	revenue := core.SumReceivables(receivables)
	return core.CashFlow{
		TotalExpenses: expenses,
		TotalRevenue:  revenue,
		Balance:       revenue.Sub(expenses),
		Monthly:       core.MonthlyTotals(payables),
	}, nil
}

func (s *SQLiteStore) ExpensesByCategory(ctx context.Context) ([]core.LabelTotal, error) {
	return s.joinedTotals(ctx, `
		SELECT COALESCE(c.descricao, cp.codigo_categoria), cp.valor_documento
		FROM contapagar cp
		LEFT JOIN categorias c ON cp.codigo_categoria = c.codigo`)
}

func (s *SQLiteStore) ExpensesBySupplier(ctx context.Context) ([]core.LabelTotal, error) {
	return s.joinedTotals(ctx, `
		SELECT COALESCE(cli.razao_social, cp.codigo_cliente_fornecedor), cp.valor_documento
		FROM contapagar cp
		LEFT JOIN clientes cli ON cp.codigo_cliente_fornecedor = cli.codigo_cliente_integracao`)
}

func (s *SQLiteStore) OverduePayments(ctx context.Context) ([]core.Payable, error) {
	payables, err := s.loadFullPayables(ctx)
	if err != nil {
		return nil, err
	}
	return core.OverduePayables(payables, time.Now()), nil
}

func (s *SQLiteStore) MonthlyTrend(ctx context.Context) ([]core.MonthlyTotal, error) {
	payables, err := s.loadPayables(ctx)
	if err != nil {
		return nil, err
	}
	return core.MonthlyTotals(payables), nil
}

// Seed inserts ledger rows; used by the demo seeder and tests.
func (s *SQLiteStore) Seed(ctx context.Context, payables []core.Payable, receivables []core.Receivable, categories, suppliers map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	for code, desc := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO categorias (codigo, descricao) VALUES (?, ?)`, code, desc); err != nil {
			return fmt.Errorf("seed category %s: %w", code, err)
		}
	}
	for code, name := range suppliers {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO clientes (codigo_cliente_integracao, razao_social) VALUES (?, ?)`, code, name); err != nil {
			return fmt.Errorf("seed supplier %s: %w", code, err)
		}
	}
	for _, p := range payables {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contapagar (numero_documento, data_vencimento, valor_documento, codigo_categoria, codigo_cliente_fornecedor, status_titulo)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.DocumentNumber, core.FormatDueDate(p.DueDate), p.Amount.String(),
			p.CategoryCode, p.SupplierCode, p.Status); err != nil {
			return fmt.Errorf("seed payable %s: %w", p.DocumentNumber, err)
		}
	}
	for _, r := range receivables {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO contareceber (data_vencimento, valor_documento) VALUES (?, ?)`,
			core.FormatDueDate(r.DueDate), r.Amount.String()); err != nil {
			return fmt.Errorf("seed receivable: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) loadPayables(ctx context.Context) ([]core.Payable, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data_vencimento, valor_documento FROM contapagar`)
	if err != nil {
		return nil, fmt.Errorf("query payables: %w", err)
	}
	defer rows.Close()

	var out []core.Payable
	for rows.Next() {
		var due, amount string
		if err := rows.Scan(&due, &amount); err != nil {
			return nil, fmt.Errorf("scan payable: %w", err)
		}
		dueDate, err := core.ParseDueDate(due)
		if err != nil {
			return nil, err
		}
		d, err := core.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		out = append(out, core.Payable{DueDate: dueDate, Amount: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payables: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) loadFullPayables(ctx context.Context) ([]core.Payable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT numero_documento, data_vencimento, valor_documento,
		       codigo_categoria, codigo_cliente_fornecedor, status_titulo
		FROM contapagar`)
	if err != nil {
		return nil, fmt.Errorf("query payables: %w", err)
	}
	defer rows.Close()

	var out []core.Payable
	for rows.Next() {
		var doc, due, amount, cat, sup, status string
		if err := rows.Scan(&doc, &due, &amount, &cat, &sup, &status); err != nil {
			return nil, fmt.Errorf("scan payable: %w", err)
		}
		p, err := payableFromRow(doc, due, amount, cat, sup, status)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payables: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) joinedTotals(ctx context.Context, query string) ([]core.LabelTotal, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query joined totals: %w", err)
	}
	defer rows.Close()

	type labeled struct {
		label  string
		amount string
	}
	var raw []labeled
	for rows.Next() {
		var l labeled
		if err := rows.Scan(&l.label, &l.amount); err != nil {
			return nil, fmt.Errorf("scan joined total: %w", err)
		}
		raw = append(raw, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate joined totals: %w", err)
	}

	payables := make([]core.Payable, 0, len(raw))
	for _, l := range raw {
		d, err := core.ParseAmount(l.amount)
		if err != nil {
			return nil, err
		}
		// Label rides in the category slot; TotalsByLabel only needs
		// the accessor to return it.
		payables = append(payables, core.Payable{CategoryCode: l.label, Amount: d})
	}
	return core.TotalsByLabel(payables, func(p core.Payable) string { return p.CategoryCode }), nil
}
