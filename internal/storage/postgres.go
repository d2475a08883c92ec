package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"fluxo/internal/core"
)

// PostgresStore reads the five reports from the ERP-fed ledger. All
// statements are fixed and read-only; aggregation for the joined reports
// happens in SQL, mirroring the upstream schema's textual due dates and
// numeric-castable amounts.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const (
	pgPayableAmounts = `
		SELECT data_vencimento, CAST(valor_documento AS numeric)
		FROM contapagar;`

	pgReceivableAmounts = `
		SELECT CAST(valor_documento AS numeric)
		FROM contareceber;`

	pgByCategory = `
		SELECT c.descricao AS categoria,
		       SUM(CAST(cp.valor_documento AS numeric)) AS total
		FROM contapagar cp
		JOIN categorias c ON cp.codigo_categoria = c.codigo
		GROUP BY c.descricao
		ORDER BY total DESC;`

	pgBySupplier = `
		SELECT cli.razao_social AS fornecedor,
		       SUM(CAST(cp.valor_documento AS numeric)) AS total
		FROM contapagar cp
		JOIN clientes cli ON cp.codigo_cliente_fornecedor = cli.codigo_cliente_integracao
		GROUP BY cli.razao_social
		ORDER BY total DESC;`

	pgOverdue = `
		SELECT numero_documento, data_vencimento,
		       CAST(valor_documento AS numeric),
		       codigo_categoria, codigo_cliente_fornecedor, status_titulo
		FROM contapagar
		WHERE to_date(data_vencimento, 'DD/MM/YYYY') < $1;`

	pgMonthlyTrend = `
		SELECT DATE_TRUNC('month', to_date(data_vencimento, 'DD/MM/YYYY')) AS mes,
		       SUM(CAST(valor_documento AS numeric)) AS total
		FROM contapagar
		GROUP BY DATE_TRUNC('month', to_date(data_vencimento, 'DD/MM/YYYY'))
		ORDER BY mes;`
)

func (s *PostgresStore) CashFlow(ctx context.Context) (core.CashFlow, error) {
	payables, err := s.payableAmounts(ctx)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("load payables: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, pgReceivableAmounts)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("load receivables: %w", err)
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

func (s *PostgresStore) ExpensesByCategory(ctx context.Context) ([]core.LabelTotal, error) {
	return s.labelTotals(ctx, pgByCategory)
}

func (s *PostgresStore) ExpensesBySupplier(ctx context.Context) ([]core.LabelTotal, error) {
	return s.labelTotals(ctx, pgBySupplier)
}

func (s *PostgresStore) OverduePayments(ctx context.Context) ([]core.Payable, error) {
	// The cutoff is the server's local calendar date, computed here so
	// the session time zone of the database cannot skew the boundary.
	cutoff := core.DateOnly(time.Now())

	rows, err := s.db.QueryContext(ctx, pgOverdue, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query overdue payables: %w", err)
	}
	defer rows.Close()

	var out []core.Payable
	for rows.Next() {
		var (
			doc, due, amount, cat, sup, status string
		)
		if err := rows.Scan(&doc, &due, &amount, &cat, &sup, &status); err != nil {
			return nil, fmt.Errorf("scan overdue payable: %w", err)
		}
		p, err := payableFromRow(doc, due, amount, cat, sup, status)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue payables: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MonthlyTrend(ctx context.Context) ([]core.MonthlyTotal, error) {
	rows, err := s.db.QueryContext(ctx, pgMonthlyTrend)
	if err != nil {
		return nil, fmt.Errorf("query monthly trend: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyTotal
	for rows.Next() {
		var (
			month  time.Time
			amount string
		)
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		d, err := core.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		out = append(out, core.MonthlyTotal{Month: core.MonthStart(month), Total: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly totals: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) payableAmounts(ctx context.Context) ([]core.Payable, error) {
	rows, err := s.db.QueryContext(ctx, pgPayableAmounts)
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

func (s *PostgresStore) labelTotals(ctx context.Context, query string) ([]core.LabelTotal, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query label totals: %w", err)
	}
	defer rows.Close()

	var out []core.LabelTotal
	for rows.Next() {
		var (
			label  string
			amount string
		)
		if err := rows.Scan(&label, &amount); err != nil {
			return nil, fmt.Errorf("scan label total: %w", err)
		}
		d, err := core.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		out = append(out, core.LabelTotal{Label: label, Total: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label totals: %w", err)
	}
	return out, nil
}

func payableFromRow(doc, due, amount, cat, sup, status string) (core.Payable, error) {
	dueDate, err := core.ParseDueDate(due)
	if err != nil {
		return core.Payable{}, err
	}
	d, err := core.ParseAmount(amount)
	if err != nil {
		return core.Payable{}, err
	}
	return core.Payable{
		DocumentNumber: doc,
		DueDate:        dueDate,
		Amount:         d,
		CategoryCode:   cat,
		SupplierCode:   sup,
		Status:         status,
	}, nil
}
