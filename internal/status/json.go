package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pad-input/internal/buttons"
	"github.com/sweeney/pad-input/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string                 `json:"event,omitempty"`
	Reason         string                 `json:"reason,omitempty"`
	LastKeyboard   int                    `json:"last_keyboard"`
	LastController int                    `json:"last_controller"`
	Held           []string               `json:"held"`
	History        [logic.HistorySize]int `json:"history"`
	LastEvent      *EventJSON             `json:"last_event,omitempty"`
	UptimeSeconds  int64                  `json:"uptime_seconds"`
	StartTime      string                 `json:"start_time"`
	Timestamp      string                 `json:"timestamp"`
	MQTT           MQTTStatus             `json:"mqtt"`
	Debug          bool                   `json:"debug"`
	Counts         CountsJSON             `json:"event_counts"`
	Config         ConfigJSON             `json:"config"`
}

// EventJSON describes the last published event.
type EventJSON struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Edge      string `json:"edge"`
	Mask      int    `json:"mask"`
	Buttons   string `json:"buttons"`
	Inferred  bool   `json:"inferred"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	KeyboardPressed    int `json:"keyboard_pressed"`
	KeyboardReleased   int `json:"keyboard_released"`
	ControllerPressed  int `json:"controller_pressed"`
	ControllerReleased int `json:"controller_released"`
	InferredReleases   int `json:"inferred_releases"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker,omitempty"`
	HTTPAddr    string `json:"http_addr"`
	GPIO        bool   `json:"gpio"`
	Keyboard    bool   `json:"keyboard"`
}

// HeldButtons names the buttons of the last controller value.
func HeldButtons(st logic.State) []string {
	bs := buttons.Decode(st.LastController, false)
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.String()
	}
	return names
}

func buildInner(snap Snapshot) StatusInner {
	st := snap.State
	inner := StatusInner{
		LastKeyboard:   st.LastKeyboard,
		LastController: st.LastController,
		Held:           HeldButtons(st),
		History:        st.History,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Debug:          snap.Debug,
		Counts: CountsJSON{
			KeyboardPressed:    st.Counts.KeyboardPressed,
			KeyboardReleased:   st.Counts.KeyboardReleased,
			ControllerPressed:  st.Counts.ControllerPressed,
			ControllerReleased: st.Counts.ControllerReleased,
			InferredReleases:   st.Counts.InferredReleases,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			GPIO:        snap.Config.GPIO,
			Keyboard:    snap.Config.Keyboard,
		},
	}
	if e := snap.LastEvent; e != nil {
		inner.LastEvent = &EventJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
			Source:    string(e.Source()),
			Edge:      e.Edge().String(),
			Mask:      e.Mask,
			Buttons:   buttons.Describe(e.Buttons()),
			Inferred:  e.Inferred,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
