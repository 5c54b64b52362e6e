// Package event fans decoded input events out to subscribers.
package event

import (
	"sync"

	"github.com/sweeney/pad-input/internal/logic"
)

// Handler receives a published event.
type Handler func(logic.Event)

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is an ordered list of subscribers. Publish calls every subscriber
// synchronously, in registration order. Safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64
}

// NewBus creates a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, handler: h})
	b.mu.Unlock()

	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			// Copy so a Publish iterating the old slice is unaffected.
			subs := make([]subscriber, 0, len(b.subs)-1)
			subs = append(subs, b.subs[:i]...)
			b.subs = append(subs, b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every current subscriber. With no subscribers it does nothing.
// Handlers must not publish on the same bus from within the call.
func (b *Bus) Publish(e logic.Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(e)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
