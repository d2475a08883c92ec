package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fluxo/internal/core"
	applog "fluxo/internal/log"
	"fluxo/internal/reports"
)

// reportTimeout bounds every ledger query so a slow backend cannot hang
// a partial swap.
const reportTimeout = 7 * time.Second

// Sidebar labels, in rendering order. Each maps to exactly one partial.
var sidebarEntries = []struct {
	Label string
	Path  string
}{
	{"Fluxo de Caixa", "/ui/cash-flow"},
	{"Despesas por Categoria", "/ui/categories"},
	{"Despesas por Fornecedor", "/ui/suppliers"},
	{"Pagamentos Vencidos", "/ui/overdue"},
	{"Tendências de Despesas", "/ui/trend"},
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Entries []struct {
			Label string
			Path  string
		}
	}{Entries: sidebarEntries}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Memoized report getters. Each is keyed on the report name alone; the
// underlying queries take no parameters.

func (s *Server) getCashFlow(ctx context.Context) (core.CashFlow, error) {
	if data, found := s.cashFlowCache.Get(reports.NameCashFlow); found {
		slog.DebugContext(ctx, "Report cache hit", applog.FieldReport, reports.NameCashFlow)
		return data, nil
	}
	cctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()
	data, err := s.reader.CashFlow(cctx)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("cash flow report: %w", err)
	}
	s.cashFlowCache.Set(reports.NameCashFlow, data)
	return data, nil
}

func (s *Server) getLabelTotals(ctx context.Context, name string, load func(context.Context) ([]core.LabelTotal, error)) ([]core.LabelTotal, error) {
	if data, found := s.labelCache.Get(name); found {
		slog.DebugContext(ctx, "Report cache hit", applog.FieldReport, name)
		return data, nil
	}
	cctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()
	data, err := load(cctx)
	if err != nil {
		return nil, fmt.Errorf("%s report: %w", name, err)
	}
	s.labelCache.Set(name, data)
	return data, nil
}

func (s *Server) getOverdue(ctx context.Context) ([]core.Payable, error) {
	if data, found := s.overdueCache.Get(reports.NameOverdue); found {
		slog.DebugContext(ctx, "Report cache hit", applog.FieldReport, reports.NameOverdue)
		return data, nil
	}
	cctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()
	data, err := s.reader.OverduePayments(cctx)
	if err != nil {
		return nil, fmt.Errorf("overdue report: %w", err)
	}
	s.overdueCache.Set(reports.NameOverdue, data)
	return data, nil
}

func (s *Server) getMonthlyTrend(ctx context.Context) ([]core.MonthlyTotal, error) {
	if data, found := s.monthlyCache.Get(reports.NameMonthlyTrend); found {
		slog.DebugContext(ctx, "Report cache hit", applog.FieldReport, reports.NameMonthlyTrend)
		return data, nil
	}
	cctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()
	data, err := s.reader.MonthlyTrend(cctx)
	if err != nil {
		return nil, fmt.Errorf("monthly trend report: %w", err)
	}
	s.monthlyCache.Set(reports.NameMonthlyTrend, data)
	return data, nil
}

// handleCashFlow renders the cash flow overview partial: three scalar
// metrics plus the monthly expense line chart.
func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	cf, err := s.getCashFlow(r.Context())
	if err != nil {
		s.renderReportError(w, r, reports.NameCashFlow, err)
		return
	}

	data := struct {
		TotalExpenses string
		TotalRevenue  string
		Balance       string
		BalanceClass  string
		HasChart      bool
		Series        string
	}{
		TotalExpenses: formatReais(cf.TotalExpenses),
		TotalRevenue:  formatReais(cf.TotalRevenue),
		Balance:       formatReais(cf.Balance),
		HasChart:      len(cf.Monthly) > 0,
		Series:        monthlySeriesJSON(cf.Monthly),
	}
	if cf.Balance.IsNegative() {
		data.BalanceClass = "metric__value--negative"
	} else if cf.Balance.IsPositive() {
		data.BalanceClass = "metric__value--positive"
	}

	s.renderPartial(w, r, "cash_flow.html", data)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.renderLabelTotals(w, r, reports.NameByCategory, "Despesas por Categoria", "Categoria", s.reader.ExpensesByCategory)
}

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	s.renderLabelTotals(w, r, reports.NameBySupplier, "Despesas por Fornecedor", "Fornecedor", s.reader.ExpensesBySupplier)
}

// renderLabelTotals backs both grouped-expense partials; they differ
// only in title, column header and the underlying query.
func (s *Server) renderLabelTotals(w http.ResponseWriter, r *http.Request, name, title, header string, load func(context.Context) ([]core.LabelTotal, error)) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	totals, err := s.getLabelTotals(r.Context(), name, load)
	if err != nil {
		s.renderReportError(w, r, name, err)
		return
	}

	// Widths scale each bar against the maximum total; descending
	// order guarantees the first row is the maximum.
	type row struct {
		Label  string
		Amount string
		Width  int
	}
	data := struct {
		Title       string
		LabelHeader string
		Rows        []row
		HasChart    bool
		Series      string
	}{Title: title, LabelHeader: header, HasChart: len(totals) > 0, Series: labelSeriesJSON(totals)}

	var max = core.LabelTotal{}
	if len(totals) > 0 {
		max = totals[0]
	}
	for _, t := range totals {
		width := 0
		if max.Total.IsPositive() && t.Total.IsPositive() {
			width = int(t.Total.Mul(hundred).Div(max.Total).IntPart())
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, row{Label: t.Label, Amount: formatReais(t.Total), Width: width})
	}

	s.renderPartial(w, r, "label_totals.html", data)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	overdue, err := s.getOverdue(r.Context())
	if err != nil {
		s.renderReportError(w, r, reports.NameOverdue, err)
		return
	}

	type row struct {
		Document string
		DueDate  string
		Amount   string
		Category string
		Supplier string
		Status   string
	}
	data := struct {
		Count int
		Total string
		Rows  []row
	}{Count: len(overdue), Total: formatReais(core.SumPayables(overdue))}
	for _, p := range overdue {
		data.Rows = append(data.Rows, row{
			Document: p.DocumentNumber,
			DueDate:  core.FormatDueDate(p.DueDate),
			Amount:   formatReais(p.Amount),
			Category: p.CategoryCode,
			Supplier: p.SupplierCode,
			Status:   p.Status,
		})
	}

	s.renderPartial(w, r, "overdue.html", data)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	trend, err := s.getMonthlyTrend(r.Context())
	if err != nil {
		s.renderReportError(w, r, reports.NameMonthlyTrend, err)
		return
	}

	type row struct {
		Month  string
		Amount string
	}
	data := struct {
		Rows     []row
		HasChart bool
		Series   string
	}{HasChart: len(trend) > 0, Series: monthlySeriesJSON(trend)}
	for _, m := range trend {
		data.Rows = append(data.Rows, row{Month: m.Month.Format("01/2006"), Amount: formatReais(m.Total)})
	}

	s.renderPartial(w, r, "trend.html", data)
}

// handleRefresh drops every memoized report on demand.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.InvalidateReports()
	w.Header().Set("HX-Trigger", "reports:refreshed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Relatórios atualizados</div>`))
}

// handleCashFlowMonthlyJSON serves the cash flow line chart series.
func (s *Server) handleCashFlowMonthlyJSON(w http.ResponseWriter, r *http.Request) {
	cf, err := s.getCashFlow(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Cash flow series error", applog.FieldError, err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}
	writeSeriesJSON(w, cf.Monthly)
}

// handleTrendJSON serves the monthly trend line chart series.
func (s *Server) handleTrendJSON(w http.ResponseWriter, r *http.Request) {
	trend, err := s.getMonthlyTrend(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend series error", applog.FieldError, err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}
	writeSeriesJSON(w, trend)
}

func writeSeriesJSON(w http.ResponseWriter, series []core.MonthlyTotal) {
	type point struct {
		Month  string  `json:"month"`
		Amount float64 `json:"amount"`
	}
	points := make([]point, 0, len(series))
	for _, m := range series {
		points = append(points, point{
			Month:  m.Month.Format("2006-01"),
			Amount: m.Total.InexactFloat64(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(points)
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error",
			applog.FieldError, err, "template", name)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao renderizar relatório</div>`))
	}
}

// renderReportError isolates a failing report to its own view: the
// partial shows a placeholder and every other view stays selectable.
func (s *Server) renderReportError(w http.ResponseWriter, r *http.Request, name string, err error) {
	slog.ErrorContext(r.Context(), "Report error",
		applog.FieldReport, name,
		applog.FieldError, err)
	_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar relatório</div>`))
}
