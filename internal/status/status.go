// Package status provides a thread-safe view of the daemon's state for the
// HTTP status page and the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pad-input/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string // empty when MQTT is disabled
	HTTPAddr    string
	GPIO        bool
	Keyboard    bool
}

// Snapshot is a point-in-time view of daemon state. It is a value and safe
// to use after the lock is released.
type Snapshot struct {
	State         logic.State
	LastEvent     *logic.Event
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Debug         bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest decoder state. Called from the main loop on
// every frame.
func (t *Tracker) Update(st logic.State) {
	t.mu.Lock()
	t.snap.State = st
	t.mu.Unlock()
}

// SetLastEvent records the most recently published event. It has the shape
// of an event subscriber.
func (t *Tracker) SetLastEvent(e logic.Event) {
	t.mu.Lock()
	t.snap.LastEvent = &e
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetDebug records whether debug logging is on.
func (t *Tracker) SetDebug(debug bool) {
	t.mu.Lock()
	t.snap.Debug = debug
	t.mu.Unlock()
}

// Snapshot returns a copy of the daemon state with Now set to the current time.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.LastEvent != nil {
		e := *s.LastEvent
		s.LastEvent = &e
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
