package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeKind names the mutation that produced a ChangeEvent.
type ChangeKind string

const (
	EntryCreated    ChangeKind = "entry.created"
	EntryUpdated    ChangeKind = "entry.updated"
	EntryDeleted    ChangeKind = "entry.deleted"
	CategoryAdded   ChangeKind = "category.added"
	CategoryDeleted ChangeKind = "category.deleted"
	AccountCreated  ChangeKind = "account.created"
	AccountUpdated  ChangeKind = "account.updated"
	AccountDeleted  ChangeKind = "account.deleted"
	PaymentRecorded ChangeKind = "account.payment"
	DataImported    ChangeKind = "data.imported"
)

// ChangeEvent is a lightweight notification that stored data changed.
// Consumers re-read the stores; the event carries no payload beyond the id.
type ChangeEvent struct {
	Kind      ChangeKind `json:"kind"`
	ID        int64      `json:"id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewChangeEvent(kind ChangeKind, id int64) ChangeEvent {
	return ChangeEvent{Kind: kind, ID: id, Timestamp: time.Now().UTC()}
}

func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON decodes an event and rejects ones without a kind.
func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return ChangeEvent{}, err
	}
	if e.Kind == "" {
		return ChangeEvent{}, fmt.Errorf("change event without kind")
	}
	return e, nil
}
