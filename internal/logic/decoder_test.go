package logic

import (
	"testing"

	"github.com/sweeney/pad-input/internal/buttons"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		current, last int
		want          Edge
	}{
		{5, 0, EdgeRising},
		{0, 5, EdgeFalling},
		{5, 5, EdgeNone},
		{0, 0, EdgeNone},
		{7, 5, EdgeRising},
	}
	for _, tt := range tests {
		if got := Classify(tt.current, tt.last); got != tt.want {
			t.Errorf("Classify(%d, %d): got %s, want %s", tt.current, tt.last, got, tt.want)
		}
	}
}

func TestNewDecoder(t *testing.T) {
	d := NewDecoder()
	if d == nil {
		t.Fatal("NewDecoder returned nil")
	}
	st := d.State()
	if st.LastKeyboard != 0 || st.LastController != 0 {
		t.Errorf("expected zero edge state, got %+v", st)
	}
	if st.History != [HistorySize]int{} {
		t.Errorf("expected empty history, got %v", st.History)
	}
}

func TestKeyboardPressAndRelease(t *testing.T) {
	d := NewDecoder()

	events := d.KeyboardInput(int(buttons.Up))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	want := Event{Mask: int(buttons.Up), Rising: true, Keyboard: true}
	if events[0] != want {
		t.Errorf("got %+v, want %+v", events[0], want)
	}

	// Held: no event
	if events := d.KeyboardInput(int(buttons.Up)); len(events) != 0 {
		t.Errorf("expected no events while held, got %v", events)
	}

	// Released: falling edge carries the current value
	events = d.KeyboardInput(0)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	want = Event{Mask: 0, Rising: false, Keyboard: true}
	if events[0] != want {
		t.Errorf("got %+v, want %+v", events[0], want)
	}

	counts := d.EventCountsSnapshot()
	if counts.KeyboardPressed != 1 || counts.KeyboardReleased != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestKeyboardChangeIsRisingOnly(t *testing.T) {
	d := NewDecoder()
	d.KeyboardInput(int(buttons.Up))

	events := d.KeyboardInput(int(buttons.Down))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].Rising || events[0].Mask != int(buttons.Down) {
		t.Errorf("expected rising Down, got %+v", events[0])
	}
}

func TestKeyboardSwapsCircleAndCross(t *testing.T) {
	d := NewDecoder()

	events := d.KeyboardInput(int(buttons.Circle))
	if len(events) != 1 || events[0].Mask != int(buttons.Cross) {
		t.Fatalf("expected rising Cross, got %+v", events)
	}
	if d.State().LastKeyboard != int(buttons.Cross) {
		t.Errorf("LastKeyboard: got 0x%X, want Cross", d.State().LastKeyboard)
	}

	events = d.KeyboardInput(int(buttons.Cross))
	if len(events) != 1 || events[0].Mask != int(buttons.Circle) {
		t.Fatalf("expected rising Circle, got %+v", events)
	}

	// Combos are passed through untouched.
	combo := buttons.Mask(buttons.Circle, buttons.Up)
	events = d.KeyboardInput(combo)
	if len(events) != 1 || events[0].Mask != combo {
		t.Fatalf("expected rising combo 0x%X, got %+v", combo, events)
	}
}

func TestKeyboardPushesEmptyControllerSlot(t *testing.T) {
	d := NewDecoder()
	d.ControllerInput(int(buttons.Up))
	d.KeyboardInput(int(buttons.Start))

	hist := d.State().History
	if hist[0] != 0 || hist[1] != int(buttons.Up) {
		t.Errorf("unexpected history: %v", hist)
	}
}

func TestControllerPressOnly(t *testing.T) {
	d := NewDecoder()

	events := d.ControllerInput(int(buttons.Cross))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	want := Event{Mask: int(buttons.Cross), Rising: true, Keyboard: false}
	if events[0] != want {
		t.Errorf("got %+v, want %+v", events[0], want)
	}

	// No swap on the controller path, and a repeat within the window merges.
	events = d.ControllerInput(int(buttons.Up))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	wantMask := buttons.Mask(buttons.Cross, buttons.Up)
	if events[0].Mask != wantMask || !events[0].Rising {
		t.Errorf("expected rising 0x%X, got %+v", wantMask, events[0])
	}
	if d.State().LastController != wantMask {
		t.Errorf("LastController: got 0x%X, want 0x%X", d.State().LastController, wantMask)
	}
}

func TestControllerNeverEmitsFalling(t *testing.T) {
	d := NewDecoder()
	d.ControllerInput(buttons.Mask(buttons.Up, buttons.Left))

	// Pushes a smaller combo: the reconstructed mask changes but is still nonzero.
	for i := 0; i < HistorySize; i++ {
		for _, e := range d.ControllerInput(int(buttons.Up)) {
			if !e.Rising {
				t.Fatalf("controller path emitted a release: %+v", e)
			}
		}
	}
}

func TestInferredControllerRelease(t *testing.T) {
	d := NewDecoder()

	// Select+Start+bit 2 combined, arbitrary.
	events := d.ControllerInput(7)
	if len(events) != 1 || events[0].Mask != 7 || !events[0].Rising {
		t.Fatalf("expected controller rising 7, got %+v", events)
	}

	// Newest slot is the controller sample, so no inference yet.
	events = d.KeyboardInput(int(buttons.Start))
	if len(events) != 1 || !events[0].Keyboard {
		t.Fatalf("expected only a keyboard event, got %+v", events)
	}

	// Now the newest slot is the keyboard tick's zero.
	events = d.KeyboardInput(int(buttons.Up))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if want := (Event{Mask: 16, Rising: true, Keyboard: true}); events[0] != want {
		t.Errorf("event 0: got %+v, want %+v", events[0], want)
	}
	if want := (Event{Mask: 16, Rising: false, Keyboard: false, Inferred: true}); events[1] != want {
		t.Errorf("event 1: got %+v, want %+v", events[1], want)
	}
	if d.State().LastController != 0 {
		t.Errorf("LastController: got %d, want 0", d.State().LastController)
	}

	// Only once.
	if events := d.KeyboardInput(int(buttons.Up)); len(events) != 0 {
		t.Errorf("expected no further events, got %+v", events)
	}

	counts := d.EventCountsSnapshot()
	if counts.ControllerPressed != 1 || counts.ControllerReleased != 1 || counts.InferredReleases != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestNoInferenceWithoutHeldController(t *testing.T) {
	d := NewDecoder()
	for i := 0; i < 3; i++ {
		for _, e := range d.KeyboardInput(int(buttons.Up)) {
			if !e.Keyboard {
				t.Fatalf("unexpected controller event: %+v", e)
			}
		}
	}
}

func TestHeldComboAcrossFrames(t *testing.T) {
	d := NewDecoder()
	var got []Event

	frame := func(keyboard int, bits ...int) {
		got = append(got, d.KeyboardInput(keyboard)...)
		for _, b := range bits {
			got = append(got, d.ControllerInput(b)...)
		}
	}

	frame(0, int(buttons.Up))
	frame(0, int(buttons.Up), int(buttons.Left))
	frame(0, int(buttons.Up), int(buttons.Left))
	frame(0, int(buttons.Up), int(buttons.Left))
	frame(0) // released: newest slot is still the last bit
	frame(0) // newest slot now empty: release inferred

	want := []Event{
		{Mask: int(buttons.Up), Rising: true},
		{Mask: buttons.Mask(buttons.Up, buttons.Left), Rising: true},
		{Mask: 0, Rising: false, Inferred: true},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEventAccessors(t *testing.T) {
	e := Event{Keyboard: true, Rising: true}
	if e.Source() != SourceKeyboard || e.Edge() != EdgeRising {
		t.Errorf("unexpected accessors: %s %s", e.Source(), e.Edge())
	}
	e = Event{}
	if e.Source() != SourceController || e.Edge() != EdgeFalling {
		t.Errorf("unexpected accessors: %s %s", e.Source(), e.Edge())
	}
}

func TestEventButtons(t *testing.T) {
	tests := []struct {
		e    Event
		want []buttons.Button
	}{
		{Event{Mask: int(buttons.Cross), Keyboard: true}, []buttons.Button{buttons.Cross}},
		{Event{Mask: buttons.Mask(buttons.Circle, buttons.Up), Keyboard: true}, []buttons.Button{buttons.Cross, buttons.Up}},
		{Event{Mask: buttons.Mask(buttons.Circle, buttons.Up)}, []buttons.Button{buttons.Circle, buttons.Up}},
		{Event{Mask: 0}, nil},
	}
	for _, tt := range tests {
		got := tt.e.Buttons()
		if len(got) != len(tt.want) {
			t.Errorf("Buttons(%+v): got %v, want %v", tt.e, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Buttons(%+v): got %v, want %v", tt.e, got, tt.want)
				break
			}
		}
	}
}
