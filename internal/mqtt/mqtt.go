// Package mqtt publishes decoded input events and daemon lifecycle events.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pad-input/internal/logic"
)

// Topic is the MQTT topic for input events.
const Topic = "pad/input/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "pad/input/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an input event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (STARTUP, HEARTBEAT, SHUTDOWN, ...).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown only, e.g. "SIGTERM"
	RawPayload []byte // pre-formatted status payload, sent as is when set
	Retained   bool
}

// Payload is the message body for an input event.
type Payload struct {
	Input InputPayload `json:"input"`
}

// InputPayload contains the input event details.
type InputPayload struct {
	Timestamp string   `json:"timestamp"`
	Event     string   `json:"event"`
	Source    string   `json:"source"`
	Mask      int      `json:"mask"`
	Buttons   []string `json:"buttons"`
	Inferred  bool     `json:"inferred"`
}

// EventName returns PRESSED for a rising edge and RELEASED otherwise.
func EventName(e logic.Event) string {
	if e.Rising {
		return "PRESSED"
	}
	return "RELEASED"
}

// FormatPayload creates the JSON payload for an input event.
func FormatPayload(event logic.Event) ([]byte, error) {
	bs := event.Buttons()
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.String()
	}
	return json.Marshal(Payload{
		Input: InputPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Event:     EventName(event),
			Source:    string(event.Source()),
			Mask:      event.Mask,
			Buttons:   names,
			Inferred:  event.Inferred,
		},
	})
}

// SystemPayload is the message body for events without a status snapshot
// (OFFLINE, RECONNECTED).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// RawPayload, when set, is returned unchanged.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
