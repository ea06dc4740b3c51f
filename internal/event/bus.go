// Package event provides the in-process publish/subscribe bus that carries
// monitoring events from the backend to the session layer.
package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is the envelope delivered to subscribers.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any
}

// Handler processes a single event. Handlers run synchronously in
// subscription order; a panicking handler is recovered and logged and does
// not prevent delivery to later handlers.
type Handler func(ctx context.Context, e Event)

// Bus is a topic-based in-process event bus.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	topics map[string]map[int]Handler
	all    map[int]Handler
	logger *zap.Logger
}

// NewBus creates an empty Bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		topics: make(map[string]map[int]Handler),
		all:    make(map[int]Handler),
		logger: logger,
	}
}

// Subscribe registers a handler for a single topic. The returned function
// removes the subscription; it is safe to call more than once.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[int]Handler)
		b.topics[topic] = subs
	}
	subs[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.topics[topic], id)
	}
}

// SubscribeAll registers a handler for every topic.
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.all[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Publish delivers the event to all matching handlers before returning.
// Publishing with no subscribers is not an error.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	type sub struct {
		id int
		h  Handler
	}

	b.mu.RLock()
	subs := make([]sub, 0, len(b.topics[e.Topic])+len(b.all))
	for id, h := range b.topics[e.Topic] {
		subs = append(subs, sub{id, h})
	}
	for id, h := range b.all {
		subs = append(subs, sub{id, h})
	}
	b.mu.RUnlock()

	// Subscription ids are monotonic, so sorting restores subscription
	// order regardless of map iteration.
	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	for _, s := range subs {
		b.dispatch(ctx, s.h, e)
	}
	return nil
}

// PublishAsync delivers the event on a separate goroutine and returns
// immediately.
func (b *Bus) PublishAsync(ctx context.Context, e Event) {
	go func() {
		_ = b.Publish(ctx, e)
	}()
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", e.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}
