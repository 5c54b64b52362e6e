// Package hook is where raw notifications enter the decoder. A Hook owns one
// logic.Decoder, serialises access to it, and publishes the resulting events.
package hook

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/pad-input/internal/buttons"
	"github.com/sweeney/pad-input/internal/event"
	"github.com/sweeney/pad-input/internal/logic"
	"github.com/sweeney/pad-input/internal/metrics"
)

// Hook receives keyboard and controller notifications. Safe for concurrent use.
//
// Events are published while the hook's lock is held, so subscribers see them
// in processing order. A subscriber must not call back into the Hook.
type Hook struct {
	mu      sync.Mutex
	decoder *logic.Decoder
	bus     *event.Bus
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures a Hook.
type Option func(*Hook)

// WithClock sets the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(h *Hook) {
		h.now = now
	}
}

// New creates a Hook publishing to bus.
func New(bus *event.Bus, log zerolog.Logger, opts ...Option) *Hook {
	h := &Hook{
		decoder: logic.NewDecoder(),
		bus:     bus,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// KeyboardInput handles one notification from the keyboard source.
func (h *Hook) KeyboardInput(value int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keyboard(value)
}

// ControllerInput handles one notification from the controller source.
func (h *Hook) ControllerInput(value int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controller(value)
}

// Frame delivers one host frame: a keyboard notification carrying the current
// keyboard value (0 when nothing is held), then one controller notification
// per held controller button, lowest bit first.
func (h *Hook) Frame(keyboard, controller int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keyboard(keyboard)
	for _, bit := range buttons.Bits(controller) {
		h.controller(bit)
	}
}

func (h *Hook) keyboard(value int) {
	metrics.ObserveNotification(logic.SourceKeyboard)
	h.publish(h.decoder.KeyboardInput(value))
}

func (h *Hook) controller(value int) {
	metrics.ObserveNotification(logic.SourceController)
	h.publish(h.decoder.ControllerInput(value))
}

func (h *Hook) publish(events []logic.Event) {
	if len(events) == 0 {
		return
	}
	t := h.now()
	for _, e := range events {
		e.Timestamp = t
		h.bus.Publish(e)
	}
}

// OnInput registers fn for every published event and returns a function
// that removes it.
func (h *Hook) OnInput(fn func(mask int, rising, keyboard bool)) func() {
	return h.bus.Subscribe(func(e logic.Event) {
		fn(e.Mask, e.Rising, e.Keyboard)
	})
}

// State returns a copy of the decoder state.
func (h *Hook) State() logic.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.decoder.State()
}
