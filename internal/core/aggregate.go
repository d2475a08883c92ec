// Package core holds the ledger domain types and the pure aggregation
// logic shared by every report backend: exact decimal summation, month
// bucketing and label grouping. No I/O happens here.
package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Sum returns the exact decimal total of the given rows. Row order never
// affects the result.
func Sum[T any](rows []T, amount func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(amount(r))
	}
	return total
}

// SumPayables totals the amount column of accounts-payable rows.
func SumPayables(rows []Payable) decimal.Decimal {
	return Sum(rows, func(p Payable) decimal.Decimal { return p.Amount })
}

// SumReceivables totals the amount column of accounts-receivable rows.
func SumReceivables(rows []Receivable) decimal.Decimal {
	return Sum(rows, func(r Receivable) decimal.Decimal { return r.Amount })
}

// MonthlyTotals buckets payables by the first calendar day of their due
// month and sums each bucket. The result is sorted ascending by month;
// an empty input yields an empty result.
func MonthlyTotals(rows []Payable) []MonthlyTotal {
	buckets := make(map[time.Time]decimal.Decimal)
	for _, p := range rows {
		m := MonthStart(p.DueDate)
		buckets[m] = buckets[m].Add(p.Amount)
	}
	out := make([]MonthlyTotal, 0, len(buckets))
	for m, total := range buckets {
		out = append(out, MonthlyTotal{Month: m, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// TotalsByLabel groups payables by the given label and sums each group,
// sorted descending by total. Ties keep no particular relative order but
// the maximum-total row is always first.
func TotalsByLabel(rows []Payable, label func(Payable) string) []LabelTotal {
	buckets := make(map[string]decimal.Decimal)
	for _, p := range rows {
		l := label(p)
		buckets[l] = buckets[l].Add(p.Amount)
	}
	out := make([]LabelTotal, 0, len(buckets))
	for l, total := range buckets {
		out = append(out, LabelTotal{Label: l, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

// OverduePayables filters rows whose due date is strictly before today.
func OverduePayables(rows []Payable, today time.Time) []Payable {
	out := make([]Payable, 0)
	for _, p := range rows {
		if Overdue(p.DueDate, today) {
			out = append(out, p)
		}
	}
	return out
}
