package logic

import "github.com/sweeney/pad-input/internal/buttons"

// Decoder turns raw keyboard and controller notifications into events.
// Not safe for concurrent use.
type Decoder struct {
	history        History
	lastKeyboard   int
	lastController int
	counts         EventCounts
}

// NewDecoder creates a decoder with an empty history.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// KeyboardInput processes one keyboard notification and returns the events it
// produced, in publication order.
//
// Every keyboard notification is also a controller tick: if the controller
// reported nothing since the last tick, a held controller combo is released.
// The inferred release carries the keyboard value, not the released combo.
func (d *Decoder) KeyboardInput(value int) []Event {
	value = buttons.SwapCircleCross(value)

	var events []Event
	switch Classify(value, d.lastKeyboard) {
	case EdgeRising:
		events = append(events, Event{Mask: value, Rising: true, Keyboard: true})
		d.counts.KeyboardPressed++
	case EdgeFalling:
		events = append(events, Event{Mask: value, Rising: false, Keyboard: true})
		d.counts.KeyboardReleased++
	}
	d.lastKeyboard = value

	if d.history.Newest() == 0 {
		if d.lastController != 0 {
			events = append(events, Event{Mask: value, Rising: false, Keyboard: false, Inferred: true})
			d.counts.ControllerReleased++
			d.counts.InferredReleases++
		}
		d.lastController = 0
	}

	// Keep the controller timebase in step with keyboard ticks.
	d.history.Push(0)
	return events
}

// ControllerInput processes one controller notification. Only presses are
// reported here; controller releases come from KeyboardInput.
func (d *Decoder) ControllerInput(value int) []Event {
	d.history.Push(value)
	combined := d.history.Reconstruct()

	var events []Event
	if Classify(combined, d.lastController) == EdgeRising {
		events = append(events, Event{Mask: combined, Rising: true, Keyboard: false})
		d.counts.ControllerPressed++
	}
	d.lastController = combined
	return events
}

// State returns a copy of the decoder state.
func (d *Decoder) State() State {
	return State{
		LastKeyboard:   d.lastKeyboard,
		LastController: d.lastController,
		History:        d.history.Slots(),
		Counts:         d.counts,
	}
}

// EventCountsSnapshot returns a copy of the current event counts.
func (d *Decoder) EventCountsSnapshot() EventCounts {
	return d.counts
}
