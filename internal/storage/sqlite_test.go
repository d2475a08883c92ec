package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fluxo/internal/core"
)

func newSeededStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "fluxo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jan := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	future := time.Now().AddDate(1, 0, 0)

	err = store.Seed(context.Background(),
		[]core.Payable{
			{DocumentNumber: "NF-1", DueDate: jan, Amount: dec(t, "150.50"), CategoryCode: "C1", SupplierCode: "F1", Status: "ABERTO"},
			{DocumentNumber: "NF-2", DueDate: feb, Amount: dec(t, "30"), CategoryCode: "C2", SupplierCode: "F2", Status: "ABERTO"},
			{DocumentNumber: "NF-3", DueDate: future, Amount: dec(t, "99.99"), CategoryCode: "C1", SupplierCode: "F1", Status: "ABERTO"},
		},
		[]core.Receivable{
			{DueDate: jan, Amount: dec(t, "500")},
		},
		map[string]string{"C1": "Serviços", "C2": "Insumos"},
		map[string]string{"F1": "Fornecedor Alfa"},
	)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return store
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestSQLiteCashFlow(t *testing.T) {
	store := newSeededStore(t)

	cf, err := store.CashFlow(context.Background())
	if err != nil {
		t.Fatalf("CashFlow: %v", err)
	}
	if want := dec(t, "280.49"); !cf.TotalExpenses.Equal(want) {
		t.Errorf("TotalExpenses = %s, want %s", cf.TotalExpenses, want)
	}
	if want := dec(t, "500"); !cf.TotalRevenue.Equal(want) {
		t.Errorf("TotalRevenue = %s, want %s", cf.TotalRevenue, want)
	}
	if want := dec(t, "219.51"); !cf.Balance.Equal(want) {
		t.Errorf("Balance = %s, want %s", cf.Balance, want)
	}
	if len(cf.Monthly) != 3 {
		t.Fatalf("Monthly buckets = %d, want 3", len(cf.Monthly))
	}
	first := cf.Monthly[0]
	if first.Month.Day() != 1 {
		t.Errorf("bucket should start on day 1, got %v", first.Month)
	}
	if !first.Month.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first bucket = %v, want January 2024", first.Month)
	}
	if !first.Total.Equal(dec(t, "150.50")) {
		t.Errorf("January total = %s", first.Total)
	}
}

func TestSQLiteExpensesByCategory(t *testing.T) {
	store := newSeededStore(t)

	totals, err := store.ExpensesByCategory(context.Background())
	if err != nil {
		t.Fatalf("ExpensesByCategory: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("categories = %d, want 2", len(totals))
	}
	// C1 = 150.50 + 99.99, descending first.
	if totals[0].Label != "Serviços" || !totals[0].Total.Equal(dec(t, "250.49")) {
		t.Errorf("top category = %s %s", totals[0].Label, totals[0].Total)
	}
	if totals[1].Label != "Insumos" {
		t.Errorf("second category = %s", totals[1].Label)
	}
}

func TestSQLiteExpensesBySupplierFallsBackToCode(t *testing.T) {
	store := newSeededStore(t)

	totals, err := store.ExpensesBySupplier(context.Background())
	if err != nil {
		t.Fatalf("ExpensesBySupplier: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("suppliers = %d, want 2", len(totals))
	}
	if totals[0].Label != "Fornecedor Alfa" {
		t.Errorf("top supplier = %s", totals[0].Label)
	}
	// F2 has no clientes row; its raw code labels the bucket.
	if totals[1].Label != "F2" || !totals[1].Total.Equal(dec(t, "30")) {
		t.Errorf("unmatched supplier = %s %s", totals[1].Label, totals[1].Total)
	}
}

func TestSQLiteOverduePayments(t *testing.T) {
	store := newSeededStore(t)

	overdue, err := store.OverduePayments(context.Background())
	if err != nil {
		t.Fatalf("OverduePayments: %v", err)
	}
	if len(overdue) != 2 {
		t.Fatalf("overdue = %d, want 2 (future title excluded)", len(overdue))
	}
	for _, p := range overdue {
		if p.DocumentNumber == "NF-3" {
			t.Errorf("future payable NF-3 should not be overdue")
		}
		if p.DocumentNumber == "" || p.Status == "" {
			t.Errorf("overdue row missing fields: %+v", p)
		}
	}
}

func TestSQLiteMonthlyTrend(t *testing.T) {
	store := newSeededStore(t)

	trend, err := store.MonthlyTrend(context.Background())
	if err != nil {
		t.Fatalf("MonthlyTrend: %v", err)
	}
	if len(trend) != 3 {
		t.Fatalf("trend buckets = %d, want 3", len(trend))
	}
	for i := 1; i < len(trend); i++ {
		if !trend[i-1].Month.Before(trend[i].Month) {
			t.Errorf("trend not ascending at %d: %v >= %v", i, trend[i-1].Month, trend[i].Month)
		}
	}
}

func TestSQLiteEmptyLedger(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cf, err := store.CashFlow(context.Background())
	if err != nil {
		t.Fatalf("CashFlow: %v", err)
	}
	if !cf.TotalExpenses.IsZero() || !cf.TotalRevenue.IsZero() || !cf.Balance.IsZero() {
		t.Errorf("empty ledger cash flow = %+v", cf)
	}
	if len(cf.Monthly) != 0 {
		t.Errorf("expected no monthly buckets, got %d", len(cf.Monthly))
	}

	totals, err := store.ExpensesByCategory(context.Background())
	if err != nil {
		t.Fatalf("ExpensesByCategory: %v", err)
	}
	if len(totals) != 0 {
		t.Errorf("expected no category totals, got %d", len(totals))
	}

	overdue, err := store.OverduePayments(context.Background())
	if err != nil {
		t.Fatalf("OverduePayments: %v", err)
	}
	if len(overdue) != 0 {
		t.Errorf("expected no overdue titles, got %d", len(overdue))
	}
}

func TestSQLiteBadAmountFailsLoudly(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bad.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	_, err = store.db.Exec(`
		INSERT INTO contapagar (numero_documento, data_vencimento, valor_documento, codigo_categoria, codigo_cliente_fornecedor, status_titulo)
		VALUES ('NF-X', '01/01/2024', 'abc', 'C1', 'F1', 'ABERTO')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := store.CashFlow(context.Background()); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}
