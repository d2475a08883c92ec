package amqp

import (
	"strings"
	"testing"
)

func TestLedgerRefreshMessageRoundTrip(t *testing.T) {
	msg := NewLedgerRefreshMessage("erp-sync", "contapagar", "contareceber")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := LedgerRefreshMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Source != "erp-sync" {
		t.Errorf("Source = %s", got.Source)
	}
	if len(got.Tables) != 2 || got.Tables[0] != "contapagar" {
		t.Errorf("Tables = %v", got.Tables)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestLedgerRefreshMessageOmitsEmptyTables(t *testing.T) {
	data, err := NewLedgerRefreshMessage("fluxo-seed").ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if strings.Contains(string(data), "tables") {
		t.Errorf("empty tables should be omitted: %s", data)
	}
}

func TestLedgerRefreshMessageFromInvalidJSON(t *testing.T) {
	if _, err := LedgerRefreshMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid payload")
	}
}
