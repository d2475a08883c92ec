package amqp

import (
	"encoding/json"
	"time"
)

// LedgerRefreshMessage announces that the upstream ERP sync rewrote part
// of the ledger. The dashboard reacts by dropping its memoized reports;
// the next selection re-queries fresh data.
type LedgerRefreshMessage struct {
	Source    string    `json:"source"`
	Tables    []string  `json:"tables,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerRefreshMessage(source string, tables ...string) *LedgerRefreshMessage {
	return &LedgerRefreshMessage{
		Source:    source,
		Tables:    tables,
		Timestamp: time.Now(),
	}
}

func (m *LedgerRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerRefreshMessageFromJSON(data []byte) (*LedgerRefreshMessage, error) {
	var msg LedgerRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
