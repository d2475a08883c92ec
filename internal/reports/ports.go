package reports

import (
	"context"

	"fluxo/internal/core"
)

// Report names, used as memo cache keys and in logs.
const (
	NameCashFlow     = "cash_flow"
	NameByCategory   = "expenses_by_category"
	NameBySupplier   = "expenses_by_supplier"
	NameOverdue      = "overdue_payments"
	NameMonthlyTrend = "monthly_trend"
)

// Reader is the port every ledger backend implements. Each operation
// covers one report over the whole underlying table; there are no
// caller-supplied filters. An empty ledger yields empty results, not an
// error.
type Reader interface {
	// CashFlow returns both ledger totals, their balance and the
	// monthly expense series.
	CashFlow(ctx context.Context) (core.CashFlow, error)

	// ExpensesByCategory returns payable totals grouped by category
	// description, sorted descending by total.
	ExpensesByCategory(ctx context.Context) ([]core.LabelTotal, error)

	// ExpensesBySupplier returns payable totals grouped by supplier
	// legal name, sorted descending by total.
	ExpensesBySupplier(ctx context.Context) ([]core.LabelTotal, error)

	// OverduePayments returns payables due strictly before today.
	OverduePayments(ctx context.Context) ([]core.Payable, error)

	// MonthlyTrend returns payable totals grouped by month, ascending.
	MonthlyTrend(ctx context.Context) ([]core.MonthlyTotal, error)
}
