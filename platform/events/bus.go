// Package events provides event bus infrastructure.
// InMemoryBus is the in-process implementation used by all binaries.
package events

import (
	"context"
	"fmt"
	"sync"

	"leadportal_backend/platform/logger"

	"go.uber.org/multierr"
)

// InMemoryBus dispatches events to subscribed handlers within the process.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish dispatches the event asynchronously. Handler errors and panics are
// logged, never propagated to the publisher. Handlers run detached from the
// publisher's cancellation: a request-scoped context ending must not abort a
// handler that is still in flight.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)
	for _, handler := range b.handlersFor(event.EventName()) {
		h := handler
		go func() {
			if err := b.safeHandle(ctx, h, event); err != nil {
				b.log.Error("event handler failed",
					"event", event.EventName(),
					"error", err,
				)
			}
		}()
	}
}

// PublishSync dispatches the event and waits for every handler, returning the
// combined error.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var combined error
	for _, handler := range b.handlersFor(event.EventName()) {
		if err := b.safeHandle(ctx, handler, event); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	return combined
}

func (b *InMemoryBus) handlersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := make([]Handler, len(b.handlers[eventName]))
	copy(handlers, b.handlers[eventName])
	return handlers
}

func (b *InMemoryBus) safeHandle(ctx context.Context, handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}
