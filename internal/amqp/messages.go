package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Action names what happened to a record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

var ErrInvalidEvent = errors.New("invalid record event")

// RecordEvent is a lightweight change notification for one record.
// It carries only the id; consumers load the record from the database.
type RecordEvent struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event stamped with the current time.
func NewRecordEvent(id string, action Action) *RecordEvent {
	return &RecordEvent{
		ID:        id,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (a Action) Valid() bool {
	return a == ActionCreated || a == ActionUpdated || a == ActionDeleted
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and validates an event.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if ev.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	if !ev.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidEvent, ev.Action)
	}
	return &ev, nil
}
