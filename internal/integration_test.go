package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/pad-input/internal/buttons"
	"github.com/sweeney/pad-input/internal/event"
	"github.com/sweeney/pad-input/internal/gpio"
	"github.com/sweeney/pad-input/internal/hook"
	"github.com/sweeney/pad-input/internal/logic"
	"github.com/sweeney/pad-input/internal/mqtt"
	"github.com/sweeney/pad-input/internal/status"
	"github.com/sweeney/pad-input/internal/term"
)

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type flow struct {
	hook    *hook.Hook
	events  *event.Channel
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
}

func newFlow(t *testing.T) *flow {
	t.Helper()
	bus := event.NewBus()
	tracker := status.NewTracker(startTime, status.Config{PollMs: 16})
	bus.Subscribe(tracker.SetLastEvent)
	events := bus.Channel(64)
	t.Cleanup(events.Close)
	return &flow{
		hook:    hook.New(bus, zerolog.Nop(), hook.WithClock(func() time.Time { return startTime })),
		events:  events,
		pub:     mqtt.NewFakePublisher(),
		tracker: tracker,
	}
}

// forward publishes everything buffered on the channel.
func (f *flow) forward(t *testing.T) {
	t.Helper()
	for {
		select {
		case e := <-f.events.C:
			if err := f.pub.Publish(e); err != nil {
				t.Fatalf("publish error: %v", err)
			}
		default:
			return
		}
	}
}

func decodePayload(t *testing.T, data []byte) mqtt.InputPayload {
	t.Helper()
	var p mqtt.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return p.Input
}

// TestIntegrationCrossSourceRelease runs the canonical scenario: the controller
// reports a combo, then keyboard ticks arrive with no further controller input.
func TestIntegrationCrossSourceRelease(t *testing.T) {
	f := newFlow(t)

	f.hook.ControllerInput(7)
	f.hook.KeyboardInput(int(buttons.Start))
	f.hook.KeyboardInput(int(buttons.Up))
	f.forward(t)

	if len(f.pub.Events) != 4 {
		t.Fatalf("expected 4 events, got %d: %+v", len(f.pub.Events), f.pub.Events)
	}

	want := []struct {
		event, source string
		mask          int
		inferred      bool
	}{
		{"PRESSED", "CONTROLLER", 7, false},
		{"PRESSED", "KEYBOARD", int(buttons.Start), false},
		{"PRESSED", "KEYBOARD", int(buttons.Up), false},
		{"RELEASED", "CONTROLLER", int(buttons.Up), true},
	}
	for i, w := range want {
		p := decodePayload(t, f.pub.Payloads[i])
		if p.Event != w.event || p.Source != w.source || p.Mask != w.mask || p.Inferred != w.inferred {
			t.Errorf("event %d: got %+v, want %+v", i, p, w)
		}
		if p.Timestamp != "2026-01-01T12:00:00Z" {
			t.Errorf("event %d: unexpected timestamp %s", i, p.Timestamp)
		}
	}

	st := f.hook.State()
	if st.LastController != 0 || st.LastKeyboard != int(buttons.Up) {
		t.Errorf("unexpected state: %+v", st)
	}
}

// TestIntegrationFramesFromBothSources drives the hook the way the daemon's
// main loop does: one frame per poll with the GPIO mask and the held keys.
func TestIntegrationFramesFromBothSources(t *testing.T) {
	f := newFlow(t)

	combo := buttons.Mask(buttons.ShoulderLeft, buttons.Triangle)
	samples := []int{combo, combo, combo, combo, 0, 0, 0, 0, 0, 0}
	reader := gpio.NewFakeReader(samples)
	keys := term.NewKeyState(40 * time.Millisecond)

	poll := 16 * time.Millisecond
	for i := range samples {
		now := startTime.Add(time.Duration(i) * poll)
		if i == 6 {
			keys.Press(buttons.Circle, now)
		}
		mask, err := reader.Read()
		if err != nil {
			t.Fatalf("frame %d: gpio read error: %v", i, err)
		}
		f.hook.Frame(keys.Mask(now), mask)
		f.tracker.Update(f.hook.State())
		f.forward(t)
	}

	var got []string
	for _, e := range f.pub.Events {
		got = append(got, string(e.Source())+" "+mqtt.EventName(e)+" "+buttons.Describe(e.Buttons()))
	}
	want := []string{
		"CONTROLLER PRESSED ShoulderLeft",
		"CONTROLLER PRESSED Triangle, ShoulderLeft",
		"CONTROLLER RELEASED none",
		"KEYBOARD PRESSED Cross",
		"KEYBOARD RELEASED none",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: got %q, want %q", i, got[i], want[i])
		}
	}

	snap := f.tracker.Snapshot()
	if snap.State.Counts.InferredReleases != 1 || snap.State.Counts.KeyboardPressed != 1 {
		t.Errorf("unexpected counts: %+v", snap.State.Counts)
	}
	if snap.LastEvent == nil || !snap.LastEvent.Keyboard || snap.LastEvent.Rising {
		t.Errorf("unexpected last event: %+v", snap.LastEvent)
	}
}

func TestIntegrationPublishFailureDoesNotStopDecoding(t *testing.T) {
	f := newFlow(t)
	f.pub.PublishError = errors.New("broker down")

	f.hook.ControllerInput(int(buttons.Up))
	if err := f.pub.Publish(<-f.events.C); err == nil {
		t.Fatal("expected publish error")
	}

	f.pub.PublishError = nil
	f.hook.KeyboardInput(0)
	f.hook.KeyboardInput(0)
	f.forward(t)

	if len(f.pub.Events) != 1 || !f.pub.Events[0].Inferred {
		t.Errorf("expected inferred release after failure, got %+v", f.pub.Events)
	}
}

func TestIntegrationStatusEvents(t *testing.T) {
	f := newFlow(t)
	f.hook.ControllerInput(int(buttons.Select))
	f.tracker.Update(f.hook.State())
	f.forward(t)

	snap := f.tracker.Snapshot()
	for _, name := range []string{"STARTUP", "HEARTBEAT"} {
		err := f.pub.PublishSystem(mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      name,
			RawPayload: status.FormatStatusEvent(snap, name, ""),
		})
		if err != nil {
			t.Fatalf("publish %s: %v", name, err)
		}
	}

	for i, name := range []string{"STARTUP", "HEARTBEAT"} {
		var parsed status.StatusJSON
		if err := json.Unmarshal(f.pub.SystemPayloads[i], &parsed); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if parsed.Status.Event != name {
			t.Errorf("payload %d: event %q, want %q", i, parsed.Status.Event, name)
		}
		if parsed.Status.LastController != int(buttons.Select) {
			t.Errorf("payload %d: last controller %d", i, parsed.Status.LastController)
		}
		if parsed.Status.LastEvent == nil || parsed.Status.LastEvent.Buttons != "Select" {
			t.Errorf("payload %d: last event %+v", i, parsed.Status.LastEvent)
		}
	}
}

func TestIntegrationHistoryVisibleInStatus(t *testing.T) {
	f := newFlow(t)
	f.hook.Frame(0, buttons.Mask(buttons.Up, buttons.Right))
	f.tracker.Update(f.hook.State())

	var parsed status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(f.tracker.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := [logic.HistorySize]int{int(buttons.Right), int(buttons.Up)}
	if parsed.Status.History != want {
		t.Errorf("history: got %v, want %v", parsed.Status.History, want)
	}
}
