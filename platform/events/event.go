// Package events provides the in-process event bus the lead modules use to
// decouple the form layer from the analysis pipeline. The domain event
// definitions live in internal/events; this package carries only the
// infrastructure.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event carried on the bus.
type Event interface {
	// EventName identifies the event type, e.g. "leads.lead.updated".
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by all events; embed it in concrete
// event structs.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish dispatches asynchronously; handler failures are logged by the
	// implementation, not returned.
	Publish(ctx context.Context, event Event)

	// PublishSync dispatches and waits for every handler, returning the
	// combined error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the Event.EventName() value.
	Subscribe(eventName string, handler Handler)
}
