package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func payable(t *testing.T, due, amount string) Payable {
	t.Helper()
	d, err := ParseDueDate(due)
	if err != nil {
		t.Fatalf("parse %q: %v", due, err)
	}
	return Payable{DueDate: d, Amount: dec(t, amount)}
}

func TestSumPayablesOrderIndependent(t *testing.T) {
	a := []Payable{
		payable(t, "01/01/2024", "100.10"),
		payable(t, "15/01/2024", "50.25"),
		payable(t, "01/02/2024", "30.00"),
	}
	b := []Payable{a[2], a[0], a[1]}

	want := dec(t, "180.35")
	if got := SumPayables(a); !got.Equal(want) {
		t.Fatalf("sum = %s, want %s", got, want)
	}
	if got := SumPayables(b); !got.Equal(want) {
		t.Fatalf("reordered sum = %s, want %s", got, want)
	}
}

func TestSumEmpty(t *testing.T) {
	if got := SumPayables(nil); !got.IsZero() {
		t.Fatalf("empty sum = %s, want 0", got)
	}
	if got := SumReceivables(nil); !got.IsZero() {
		t.Fatalf("empty sum = %s, want 0", got)
	}
}

func TestMonthlyTotalsScenario(t *testing.T) {
	rows := []Payable{
		payable(t, "01/01/2024", "100"),
		payable(t, "15/01/2024", "50"),
		payable(t, "01/02/2024", "30"),
	}
	got := MonthlyTotals(rows)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(got))
	}
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	if !got[0].Month.Equal(jan) || !got[0].Total.Equal(dec(t, "150")) {
		t.Fatalf("bucket 0 = (%v, %s), want (%v, 150)", got[0].Month, got[0].Total, jan)
	}
	if !got[1].Month.Equal(feb) || !got[1].Total.Equal(dec(t, "30")) {
		t.Fatalf("bucket 1 = (%v, %s), want (%v, 30)", got[1].Month, got[1].Total, feb)
	}
}

func TestMonthlyTotalsSortedAscendingAndFirstOfMonth(t *testing.T) {
	rows := []Payable{
		payable(t, "20/12/2024", "10"),
		payable(t, "03/05/2024", "20"),
		payable(t, "28/05/2024", "5"),
		payable(t, "01/01/2024", "1"),
	}
	got := MonthlyTotals(rows)
	for i := 1; i < len(got); i++ {
		if !got[i-1].Month.Before(got[i].Month) {
			t.Fatalf("months not ascending at %d: %v >= %v", i, got[i-1].Month, got[i].Month)
		}
	}
	for _, m := range got {
		if m.Month.Day() != 1 {
			t.Fatalf("bucket month %v is not first-of-month", m.Month)
		}
	}
}

func TestMonthlyTotalsEmpty(t *testing.T) {
	if got := MonthlyTotals(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestTotalsByLabelSortedDescending(t *testing.T) {
	rows := []Payable{
		{CategoryCode: "b", Amount: dec(t, "10")},
		{CategoryCode: "a", Amount: dec(t, "100")},
		{CategoryCode: "c", Amount: dec(t, "55")},
		{CategoryCode: "a", Amount: dec(t, "1")},
	}
	got := TotalsByLabel(rows, func(p Payable) string { return p.CategoryCode })
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}
	if got[0].Label != "a" || !got[0].Total.Equal(dec(t, "101")) {
		t.Fatalf("max group = (%s, %s), want (a, 101)", got[0].Label, got[0].Total)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Total.GreaterThan(got[i-1].Total) {
			t.Fatalf("totals not descending at %d", i)
		}
	}
}

func TestTotalsByLabelEmpty(t *testing.T) {
	got := TotalsByLabel(nil, func(p Payable) string { return p.CategoryCode })
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestOverduePayablesFilter(t *testing.T) {
	today := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	rows := []Payable{
		payable(t, "10/06/2024", "1"),
		payable(t, "15/06/2024", "2"),
		payable(t, "20/06/2024", "3"),
	}
	got := OverduePayables(rows, today)
	if len(got) != 1 {
		t.Fatalf("expected 1 overdue row, got %d", len(got))
	}
	if FormatDueDate(got[0].DueDate) != "10/06/2024" {
		t.Fatalf("wrong row overdue: %s", FormatDueDate(got[0].DueDate))
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1234.56", "1234.56", true},
		{"1234,56", "1234.56", true},
		{" 10 ", "10", true},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseAmount(%q): %v", tc.in, err)
			}
			if !got.Equal(dec(t, tc.want)) {
				t.Fatalf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Fatalf("ParseAmount(%q): expected error", tc.in)
		}
	}
}
