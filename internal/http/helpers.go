package http

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"fluxo/internal/core"
)

var hundred = decimal.NewFromInt(100)

// formatReais renders an exact decimal as Brazilian currency, e.g.
// "R$ 1.234,56" and "-R$ 10,00".
func formatReais(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2) // "1234.56"

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// monthlySeriesJSON packs a monthly series for the chart canvas data
// attribute. Chart values are display-only, so float conversion is fine
// here.
func monthlySeriesJSON(series []core.MonthlyTotal) string {
	labels := make([]string, 0, len(series))
	values := make([]float64, 0, len(series))
	for _, m := range series {
		labels = append(labels, m.Month.Format("2006-01"))
		values = append(values, m.Total.InexactFloat64())
	}
	return seriesJSON(labels, values)
}

func labelSeriesJSON(totals []core.LabelTotal) string {
	labels := make([]string, 0, len(totals))
	values := make([]float64, 0, len(totals))
	for _, t := range totals {
		labels = append(labels, t.Label)
		values = append(values, t.Total.InexactFloat64())
	}
	return seriesJSON(labels, values)
}

func seriesJSON(labels []string, values []float64) string {
	payload := struct {
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
	}{Labels: labels, Values: values}
	out, err := json.Marshal(payload)
	if err != nil {
		return `{"labels":[],"values":[]}`
	}
	return string(out)
}
