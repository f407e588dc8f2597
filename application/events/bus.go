// Package events is the in-process publish/subscribe channel between the
// editor session and its observers (renderers, metrics, notices).
package events

import (
	"reflect"
	"sync"

	"flowboard/domain/events"

	"go.uber.org/zap"
)

// Unsubscribe detaches a handler. Calling it more than once is harmless.
type Unsubscribe func()

type subscription struct {
	id      uint64
	handler func(events.DomainEvent)
}

// Bus dispatches domain events to typed subscribers synchronously, in
// subscription order, on the publishing goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	byType   map[reflect.Type][]subscription
	wildcard []subscription
	logger   *zap.Logger
}

// NewBus creates an empty bus
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		byType: make(map[reflect.Type][]subscription),
		logger: logger,
	}
}

// Subscribe registers handler for events of concrete type T
func Subscribe[T events.DomainEvent](b *Bus, handler func(T)) Unsubscribe {
	key := reflect.TypeOf((*T)(nil)).Elem()
	wrapped := func(e events.DomainEvent) {
		if typed, ok := e.(T); ok {
			handler(typed)
		}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.byType[key] = append(b.byType[key], subscription{id: id, handler: wrapped})
	b.mu.Unlock()

	return b.unsubscriber(func() {
		b.byType[key] = remove(b.byType[key], id)
		if len(b.byType[key]) == 0 {
			delete(b.byType, key)
		}
	})
}

// SubscribeAll registers handler for every event
func (b *Bus) SubscribeAll(handler func(events.DomainEvent)) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.wildcard = append(b.wildcard, subscription{id: id, handler: handler})
	b.mu.Unlock()

	return b.unsubscriber(func() {
		b.wildcard = remove(b.wildcard, id)
	})
}

// Publish delivers each event to its typed subscribers, then to wildcard subscribers.
// A panicking handler is logged and skipped.
func (b *Bus) Publish(evts ...events.DomainEvent) {
	for _, event := range evts {
		if event == nil {
			continue
		}
		key := reflect.TypeOf(event)

		b.mu.RLock()
		targets := make([]subscription, 0, len(b.byType[key])+len(b.wildcard))
		targets = append(targets, b.byType[key]...)
		targets = append(targets, b.wildcard...)
		b.mu.RUnlock()

		for _, sub := range targets {
			b.deliver(sub, event)
		}
	}
}

// SubscriberCount returns the number of live subscriptions
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.wildcard)
	for _, subs := range b.byType {
		n += len(subs)
	}
	return n
}

func (b *Bus) deliver(sub subscription, event events.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("eventType", event.GetEventType()),
				zap.Any("panic", r),
			)
		}
	}()
	sub.handler(event)
}

func (b *Bus) unsubscriber(detach func()) Unsubscribe {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			detach()
		})
	}
}

func remove(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
