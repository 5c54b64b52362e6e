// Package logic contains the pure input decoding core: the controller history,
// combo reconstruction, edge detection and cross-source release inference.
// This package has NO I/O and no locking. Callers serialise access.
package logic

import (
	"time"

	"github.com/sweeney/pad-input/internal/buttons"
)

// Source identifies which raw notification source produced an event.
type Source string

const (
	SourceKeyboard   Source = "KEYBOARD"
	SourceController Source = "CONTROLLER"
)

// Edge is the classification of a value against the last processed value.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	default:
		return "none"
	}
}

// Event is a decoded input transition.
type Event struct {
	// Mask is the combined button mask carried by the event.
	Mask int
	// Rising is true for a press, false for a release.
	Rising bool
	// Keyboard is true when the event belongs to the keyboard source.
	Keyboard bool
	// Inferred marks a controller release deduced from keyboard cadence.
	// Mask then holds the keyboard value that triggered the inference.
	Inferred bool
	// Timestamp is set at publication; the decoder leaves it zero.
	Timestamp time.Time
}

// Source returns the source the event belongs to.
func (e Event) Source() Source {
	if e.Keyboard {
		return SourceKeyboard
	}
	return SourceController
}

// Edge returns EdgeRising or EdgeFalling.
func (e Event) Edge() Edge {
	if e.Rising {
		return EdgeRising
	}
	return EdgeFalling
}

// Buttons decodes the event's mask. Single keyboard values were swapped on
// the way in, so only keyboard combos are swapped here.
func (e Event) Buttons() []buttons.Button {
	return buttons.Decode(e.Mask, e.Keyboard && !buttons.IsButton(e.Mask))
}

// EventCounts tracks the number of each event kind since startup.
type EventCounts struct {
	KeyboardPressed    int
	KeyboardReleased   int
	ControllerPressed  int
	ControllerReleased int
	// InferredReleases is the subset of ControllerReleased that was inferred.
	InferredReleases int
}

// State is a point-in-time copy of the decoder's state.
type State struct {
	LastKeyboard   int
	LastController int
	History        [HistorySize]int
	Counts         EventCounts
}
