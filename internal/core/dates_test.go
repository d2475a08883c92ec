package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDueDateDayFirst(t *testing.T) {
	// "05/01/2024" is January 5th, never May 1st.
	got, err := ParseDueDate("05/01/2024")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.January || got.Day() != 5 {
		t.Fatalf("expected 2024-01-05, got %v", got)
	}
}

func TestParseDueDateMalformed(t *testing.T) {
	cases := []string{"", "2024-01-05", "32/01/2024", "05-01-2024", "5/1/24", "abc"}
	for _, s := range cases {
		if _, err := ParseDueDate(s); err == nil {
			t.Fatalf("expected error for %q", s)
		} else if !errors.Is(err, ErrInvalidDueDate) {
			t.Fatalf("expected ErrInvalidDueDate for %q, got %v", s, err)
		}
	}
}

func TestFormatDueDateRoundTrip(t *testing.T) {
	d := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	if got := FormatDueDate(d); got != "05/01/2024" {
		t.Fatalf("expected 05/01/2024, got %s", got)
	}
}

func TestMonthStart(t *testing.T) {
	d := time.Date(2024, time.March, 17, 13, 45, 0, 0, time.Local)
	got := MonthStart(d)
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOverdueBoundary(t *testing.T) {
	today := time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		due     string
		overdue bool
	}{
		{"10/06/2024", true},
		{"14/06/2024", true},
		{"15/06/2024", false}, // due today is not overdue
		{"16/06/2024", false},
	}
	for _, tc := range cases {
		due, err := ParseDueDate(tc.due)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.due, err)
		}
		if got := Overdue(due, today); got != tc.overdue {
			t.Fatalf("Overdue(%s) = %v, want %v", tc.due, got, tc.overdue)
		}
	}
}
