package core

import (
	"fmt"
	"strings"
	"time"
)

// DueDateLayout is the day-first layout used by the ledger for every due
// date. "05/01/2024" is January 5th, not May 1st.
const DueDateLayout = "02/01/2006"

// ParseDueDate parses a ledger due date. The input must match
// DueDateLayout exactly.
func ParseDueDate(s string) (time.Time, error) {
	t, err := time.Parse(DueDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match DD/MM/YYYY", ErrInvalidDueDate, s)
	}
	return t, nil
}

// FormatDueDate renders a date back in the ledger's DD/MM/YYYY form.
func FormatDueDate(t time.Time) string {
	return t.Format(DueDateLayout)
}

// MonthStart truncates a date to the first calendar day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateOnly strips the time-of-day component, keeping the calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overdue reports whether a due date is strictly before today. A payable
// due today is not overdue.
func Overdue(due, today time.Time) bool {
	return DateOnly(due).Before(DateOnly(today))
}
