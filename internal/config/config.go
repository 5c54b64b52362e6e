// Package config loads the daemon's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the daemon configuration.
type Config struct {
	Debug       bool   `toml:"debug"`
	PollMs      int64  `toml:"poll_ms"`
	HeartbeatMs int64  `toml:"heartbeat_ms"`
	EventBuffer int    `toml:"event_buffer"`
	LogFile     string `toml:"log_file"`

	MQTT     MQTT     `toml:"mqtt"`
	HTTP     HTTP     `toml:"http"`
	GPIO     GPIO     `toml:"gpio"`
	Keyboard Keyboard `toml:"keyboard"`
}

// MQTT configures event publishing.
type MQTT struct {
	Enabled  bool   `toml:"enabled"`
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
}

// HTTP configures the status server. An empty Addr disables it.
type HTTP struct {
	Addr string `toml:"addr"`
}

// GPIO configures the controller source. Pins maps button names to line
// offsets; empty means the default wiring.
type GPIO struct {
	Enabled bool           `toml:"enabled"`
	Chip    string         `toml:"chip"`
	Pins    map[string]int `toml:"pins"`
}

// Keyboard configures the terminal keyboard source. Keys maps key names to
// button names; empty means the default layout.
type Keyboard struct {
	Enabled bool              `toml:"enabled"`
	HoldMs  int64             `toml:"hold_ms"`
	Keys    map[string]string `toml:"keys"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		PollMs:      16,
		HeartbeatMs: (15 * time.Minute).Milliseconds(),
		EventBuffer: 256,
		MQTT: MQTT{
			Enabled:  true,
			Broker:   "tcp://localhost:1883",
			ClientID: "pad-input",
		},
		HTTP: HTTP{Addr: ":8080"},
		GPIO: GPIO{
			Enabled: true,
			Chip:    "gpiochip0",
		},
		Keyboard: Keyboard{
			HoldMs: 120,
		},
	}
}

// Poll returns the frame interval.
func (c Config) Poll() time.Duration { return time.Duration(c.PollMs) * time.Millisecond }

// Heartbeat returns the heartbeat interval. Zero disables heartbeats.
func (c Config) Heartbeat() time.Duration { return time.Duration(c.HeartbeatMs) * time.Millisecond }

// Hold returns how long a key counts as held after its last press.
func (c Config) Hold() time.Duration { return time.Duration(c.Keyboard.HoldMs) * time.Millisecond }

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be positive, got %d", c.PollMs)
	}
	if c.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms must not be negative, got %d", c.HeartbeatMs)
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("event_buffer must be positive, got %d", c.EventBuffer)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required when mqtt is enabled")
	}
	if c.Keyboard.Enabled && c.Keyboard.HoldMs <= 0 {
		return fmt.Errorf("keyboard.hold_ms must be positive, got %d", c.Keyboard.HoldMs)
	}
	if !c.GPIO.Enabled && !c.Keyboard.Enabled {
		return errors.New("at least one of gpio and keyboard must be enabled")
	}
	return nil
}
