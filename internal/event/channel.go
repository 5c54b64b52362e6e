package event

import (
	"sync"

	"github.com/sweeney/pad-input/internal/logic"
)

// Channel is a bus subscription backed by a buffered channel. Events that do
// not fit in the buffer are dropped so a slow reader never stalls Publish.
type Channel struct {
	// C receives published events. It is closed by Close.
	C <-chan logic.Event

	ch          chan logic.Event
	unsubscribe func()
	onDrop      func()

	mu      sync.Mutex
	closed  bool
	dropped uint64
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithDropHook calls fn each time an event is dropped.
func WithDropHook(fn func()) ChannelOption {
	return func(c *Channel) {
		c.onDrop = fn
	}
}

// Channel subscribes a buffered channel of the given size to the bus.
func (b *Bus) Channel(size int, opts ...ChannelOption) *Channel {
	if size < 0 {
		size = 0
	}
	ch := make(chan logic.Event, size)
	c := &Channel{C: ch, ch: ch}
	for _, opt := range opts {
		opt(c)
	}
	c.unsubscribe = b.Subscribe(c.send)
	return c
}

func (c *Channel) send(e logic.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- e:
	default:
		c.dropped++
		if c.onDrop != nil {
			c.onDrop()
		}
	}
}

// Dropped returns the number of events dropped because the buffer was full.
func (c *Channel) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close unsubscribes from the bus and closes C.
func (c *Channel) Close() {
	c.unsubscribe()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
