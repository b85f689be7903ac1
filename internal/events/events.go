// Package events publishes integration events about ledger changes.
// Events are emitted after the change is committed; a publish failure is
// logged and never rolls back the ledger.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Type names an integration event; it doubles as the AMQP routing key.
type Type string

const (
	ExpenseCreated     Type = "expense.created"
	ExpenseDeleted     Type = "expense.deleted"
	SplitStatusChanged Type = "split.status_changed"
)

// Event is the envelope written to the broker.
type Event struct {
	Type       Type      `json:"type"`
	ExpenseID  int64     `json:"expense_id,omitempty"`
	GroupID    int64     `json:"group_id,omitempty"`
	SplitID    int64     `json:"split_id,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// New stamps an event of the given type with the current time.
func New(t Type) Event {
	return Event{Type: t, Timestamp: time.Now().UTC()}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event.
func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
