// Package bus provides a small in-process event bus with named topics.
// Delivery is fire-and-forget: each handler runs on its own goroutine and
// the firing side never waits.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope delivered to handlers.
type Event struct {
	ID    string
	Topic string
	Time  time.Time
	Data  any
}

// Handler consumes one event.
type Handler func(ctx context.Context, ev Event)

// Unsubscribe removes a previously registered handler. Safe to call more
// than once.
type Unsubscribe func()

// Bus dispatches events to topic subscribers.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[string]map[int]Handler),
	}
}

// Subscribe registers a handler for a topic and returns its unsubscribe
// handle.
func (b *Bus) Subscribe(topic string, h Handler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[topic][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[topic], id)
		})
	}
}

// ListenerCount returns the number of handlers registered for a topic.
func (b *Bus) ListenerCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}

// Fire delivers data to every subscriber of the topic. Handlers run
// concurrently; Fire returns immediately.
func (b *Bus) Fire(ctx context.Context, topic string, data any) {
	ev := Event{
		ID:    uuid.NewString(),
		Topic: topic,
		Time:  time.Now(),
		Data:  data,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[topic]))
	for _, h := range b.handlers[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		go h(ctx, ev)
	}
}
