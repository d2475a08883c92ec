package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDueDate = errors.New("invalid due date")
	ErrInvalidAmount  = errors.New("invalid amount")
)

type (
	// Payable is one accounts-payable row as stored in the ledger.
	Payable struct {
		DocumentNumber string
		DueDate        time.Time
		Amount         decimal.Decimal
		CategoryCode   string
		SupplierCode   string
		Status         string
	}

	// Receivable is one accounts-receivable row.
	Receivable struct {
		DueDate time.Time
		Amount  decimal.Decimal
	}

	// LabelTotal is an amount aggregated under a human-readable label
	// (category description or supplier legal name).
	LabelTotal struct {
		Label string
		Total decimal.Decimal
	}

	// MonthlyTotal is an amount aggregated under the first calendar day
	// of a month.
	MonthlyTotal struct {
		Month time.Time
		Total decimal.Decimal
	}

	// CashFlow summarizes both sides of the ledger. Balance is always
	// TotalRevenue minus TotalExpenses.
	CashFlow struct {
		TotalExpenses decimal.Decimal
		TotalRevenue  decimal.Decimal
		Balance       decimal.Decimal
		Monthly       []MonthlyTotal
	}
)

// ParseAmount converts the ledger's textual amount into an exact decimal.
// The stored representation is numeric-castable text; anything else is an
// error, never a silently skipped row.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func (p Payable) Validate() error {
	if p.DueDate.IsZero() {
		return ErrInvalidDueDate
	}
	return nil
}
