// Package events provides a publish/subscribe bus for command
// lifecycle notifications. The dispatcher publishes one event per
// handled message; recorders and metrics subscribe.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Lifecycle event names published by the dispatcher.
const (
	// Dispatched: input validated and the handler ran.
	Dispatched = "command.dispatched"

	// Rejected: input failed validation; Data carries the errors.
	Rejected = "command.rejected"

	// Throttled: the invoker hit the command cooldown.
	Throttled = "command.throttled"

	// Unknown: the message used the prefix but named no known command.
	Unknown = "command.unknown"

	// Failed: the handler itself returned an error.
	Failed = "command.failed"
)

// Event is one command lifecycle notification.
type Event struct {
	// Name is the event name, e.g. "command.dispatched".
	Name string

	// Command is the canonical command name, when one resolved.
	Command string

	// Channel and Author identify where the message came from.
	Channel string
	Author  string

	// Data carries event-specific payload (validation errors, handler
	// output, retry delays).
	Data map[string]any
}

// Handler processes one event.
type Handler func(ctx context.Context, event Event) error

// Bus is a synchronous publish/subscribe event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   zerolog.Logger
}

// NewBus creates an event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event name. Wildcards:
//   - "command.rejected" matches exactly
//   - "command.*" matches every command event
//   - "*" matches everything
func (b *Bus) Subscribe(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Publish emits an event to all matching handlers, synchronously and in
// registration order. Handler errors are logged and do not stop the
// remaining handlers.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.logger.Debug().
		Str("event", event.Name).
		Str("command", event.Command).
		Str("author", event.Author).
		Msg("event emitted")

	var matched []Handler

	if handlers, ok := b.handlers[event.Name]; ok {
		matched = append(matched, handlers...)
	}

	if parts := splitEvent(event.Name); len(parts) >= 1 {
		wildcard := parts[0] + ".*"
		if handlers, ok := b.handlers[wildcard]; ok {
			matched = append(matched, handlers...)
		}
	}

	if handlers, ok := b.handlers["*"]; ok {
		matched = append(matched, handlers...)
	}

	for _, handler := range matched {
		if err := handler(ctx, event); err != nil {
			b.logger.Error().
				Err(err).
				Str("event", event.Name).
				Msg("event handler error")
		}
	}
}

// PublishAsync emits an event without waiting for handlers.
func (b *Bus) PublishAsync(ctx context.Context, event Event) {
	go b.Publish(ctx, event)
}

// HasSubscribers reports whether any handler would receive the event.
func (b *Bus) HasSubscribers(event string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.handlers[event]) > 0 {
		return true
	}

	if parts := splitEvent(event); len(parts) >= 1 {
		if len(b.handlers[parts[0]+".*"]) > 0 {
			return true
		}
	}

	return len(b.handlers["*"]) > 0
}

func splitEvent(name string) []string {
	var parts []string
	start := 0
	for i, c := range name {
		if c == '.' {
			parts = append(parts, name[start:i])
			start = i + 1
		}
	}
	if start < len(name) {
		parts = append(parts, name[start:])
	}
	return parts
}
