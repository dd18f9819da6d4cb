package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event kinds.
const (
	EventObligationCreated = "obligation_created"
	EventPaymentRecorded   = "payment_recorded"
)

// LedgerEventMessage is a lightweight notification: it carries only
// identifiers, consumers fetch the current record from the store.
type LedgerEventMessage struct {
	Event        string    `json:"event"`
	ObligationID string    `json:"obligation_id"`
	OwnerID      string    `json:"owner_id"`
	Kind         string    `json:"kind,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(event, obligationID, ownerID, kind string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:        event,
		ObligationID: obligationID,
		OwnerID:      ownerID,
		Kind:         kind,
		Timestamp:    time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
