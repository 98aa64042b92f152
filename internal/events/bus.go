// Package events carries in-process notifications between the record store,
// the remote providers and the replication workers.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Bus fans out published values to subscribers. Handlers run on the
// publisher's goroutine and must not block for long.
type Bus[T any] struct {
	mu   sync.RWMutex
	subs map[string]func(T)
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[string]func(T))}
}

// Subscribe registers fn. The returned handle removes it again.
func (b *Bus[T]) Subscribe(fn func(T)) *Subscription {
	id := uuid.NewString()

	b.mu.Lock()
	b.subs[id] = fn
	b.mu.Unlock()

	return &Subscription{cancel: func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}}
}

// Publish delivers v to every current subscriber.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	handlers := make([]func(T), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(v)
	}
}

// Len returns the number of live subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Subscription is a handle to a registered handler. Close is safe to call
// more than once and from inside the handler itself.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Close unregisters the handler. Only the first call has an effect.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}
