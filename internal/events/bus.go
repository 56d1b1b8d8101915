// Package events is a synchronous in-process publish/subscribe bus used to
// notify listeners when quotes, clients or product templates change.
package events

import (
	"sync"
	"time"
)

// Event types.
const (
	TypeCreated = "created"
	TypeUpdated = "updated"
)

// Aggregate types.
const (
	AggregateQuote   = "quote"
	AggregateClient  = "client"
	AggregateProduct = "product"
)

// Event describes a change to one aggregate.
type Event struct {
	AggregateType string
	AggregateID   string
	Type          string
	Payload       any
	OccurredAt    time.Time
}

// Handler receives published events.
type Handler func(Event)

// Bus fans events out to subscribers. The zero value is not usable; use NewBus.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers h for events of aggregateType, or for every event when
// aggregateType is empty. The returned func removes the subscription.
func (b *Bus) Subscribe(aggregateType string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[aggregateType] == nil {
		b.subs[aggregateType] = make(map[int]Handler)
	}
	b.subs[aggregateType][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[aggregateType], id)
		})
	}
}

// Publish delivers e to matching subscribers in the caller's goroutine.
// Handlers run outside the bus lock and may subscribe or unsubscribe.
func (b *Bus) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.AggregateType])+len(b.subs[""]))
	for _, h := range b.subs[e.AggregateType] {
		handlers = append(handlers, h)
	}
	if e.AggregateType != "" {
		for _, h := range b.subs[""] {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
