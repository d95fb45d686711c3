package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by transaction events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is the message published after a transaction
// mutation. Consumers fetch current state from the database; the event
// only says what happened to which ids.
type TransactionEvent struct {
	Action    string    `json:"action"`
	IDs       []int64   `json:"ids"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(action string, ids ...int64) *TransactionEvent {
	return &TransactionEvent{
		Action:    action,
		IDs:       ids,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
