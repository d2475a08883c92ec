// Package memory is the zero-setup ledger backend: rows live in process
// and every report is computed with the core aggregation helpers. It
// backs tests and the default DATA_BACKEND.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fluxo/internal/core"
)

type Store struct {
	mu          sync.Mutex
	payables    []core.Payable
	receivables []core.Receivable
	categories  map[string]string // code -> description
	suppliers   map[string]string // code -> legal name

	// now is swappable so overdue tests can pin "today".
	now func() time.Time
}

func New() *Store {
	return &Store{
		categories: make(map[string]string),
		suppliers:  make(map[string]string),
		now:        time.Now,
	}
}

// NewDemo returns a store seeded with a small ledger so the dashboard
// renders something without external services.
func NewDemo() *Store {
	s := New()
	s.AddCategory("CAT01", "Fornecedores de insumos")
	s.AddCategory("CAT02", "Serviços")
	s.AddCategory("CAT03", "Impostos")
	s.AddSupplier("F001", "Distribuidora Alfa Ltda")
	s.AddSupplier("F002", "Beta Serviços ME")
	today := core.DateOnly(time.Now())
	rows := []core.Payable{
		{DocumentNumber: "NF-1001", DueDate: today.AddDate(0, -2, 0), Amount: dec("1250.40"), CategoryCode: "CAT01", SupplierCode: "F001", Status: "ABERTO"},
		{DocumentNumber: "NF-1002", DueDate: today.AddDate(0, -1, -3), Amount: dec("980.00"), CategoryCode: "CAT02", SupplierCode: "F002", Status: "ABERTO"},
		{DocumentNumber: "NF-1003", DueDate: today.AddDate(0, 0, -5), Amount: dec("310.75"), CategoryCode: "CAT01", SupplierCode: "F001", Status: "ABERTO"},
		{DocumentNumber: "NF-1004", DueDate: today.AddDate(0, 0, 20), Amount: dec("4500.00"), CategoryCode: "CAT03", SupplierCode: "F002", Status: "ABERTO"},
	}
	for _, p := range rows {
		_ = s.AddPayable(p)
	}
	s.AddReceivable(core.Receivable{DueDate: today.AddDate(0, 0, 10), Amount: dec("5200.00")})
	s.AddReceivable(core.Receivable{DueDate: today.AddDate(0, 1, 0), Amount: dec("1890.30")})
	return s
}

func (s *Store) AddPayable(p core.Payable) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payables = append(s.payables, p)
	return nil
}

func (s *Store) AddReceivable(r core.Receivable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivables = append(s.receivables, r)
}

func (s *Store) AddCategory(code, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[code] = description
}

func (s *Store) AddSupplier(code, legalName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers[code] = legalName
}

// SetNow overrides the clock used for the overdue cutoff.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) CashFlow(_ context.Context) (core.CashFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expenses := core.SumPayables(s.payables)
	revenue := core.SumReceivables(s.receivables)
	return core.CashFlow{
		TotalExpenses: expenses,
		TotalRevenue:  revenue,
		Balance:       revenue.Sub(expenses),
		Monthly:       core.MonthlyTotals(s.payables),
	}, nil
}

func (s *Store) ExpensesByCategory(_ context.Context) ([]core.LabelTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.TotalsByLabel(s.payables, func(p core.Payable) string {
		return s.labelFor(s.categories, p.CategoryCode)
	}), nil
}

func (s *Store) ExpensesBySupplier(_ context.Context) ([]core.LabelTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.TotalsByLabel(s.payables, func(p core.Payable) string {
		return s.labelFor(s.suppliers, p.SupplierCode)
	}), nil
}

func (s *Store) OverduePayments(_ context.Context) ([]core.Payable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.OverduePayables(s.payables, s.now()), nil
}

func (s *Store) MonthlyTrend(_ context.Context) ([]core.MonthlyTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.MonthlyTotals(s.payables), nil
}

// labelFor resolves a code to its description, falling back to the raw
// code for rows that reference an unknown category or party.
func (s *Store) labelFor(names map[string]string, code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
