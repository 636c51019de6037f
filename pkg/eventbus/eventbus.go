package eventbus

import (
	"context"
	"encoding/json"
	"time"
)

// Event is anything published on the bus.
type Event interface {
	Type() string
}

// HandlerFunc handles one event.
type HandlerFunc func(ctx context.Context, e Event) error

// Envelope is the serialized form of an event as stored by a bus.
type Envelope struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Bus defines the contract for publishing and subscribing to converter events.
type Bus interface {
	// Emit delivers the event to every handler registered for its type.
	Emit(ctx context.Context, event Event) error
	// Register adds a handler for an event type.
	Register(eventType string, handler HandlerFunc)
	// Recent returns up to n of the most recently emitted events, newest first.
	Recent(ctx context.Context, n int) ([]Envelope, error)
}

// Seal wraps an event in an Envelope.
func Seal(event Event, now time.Time) (Envelope, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: event.Type(), Payload: data, Timestamp: now.UTC()}, nil
}
