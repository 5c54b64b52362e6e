// Package gpio reads a panel of GPIO buttons as the controller source.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"
	"sort"

	"github.com/sweeney/pad-input/internal/buttons"
)

// Reader reads the buttons currently held on the panel.
type Reader interface {
	// Read returns the combined mask of held buttons, 0 when none are held.
	Read() (int, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO chip on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Pin wires one GPIO line (BCM numbering) to a button.
type Pin struct {
	Offset int
	Button buttons.Button
}

// DefaultPins is the panel wiring used when the config names no pins.
func DefaultPins() []Pin {
	return []Pin{
		{Offset: 4, Button: buttons.Select},
		{Offset: 17, Button: buttons.Start},
		{Offset: 27, Button: buttons.Up},
		{Offset: 22, Button: buttons.Right},
		{Offset: 5, Button: buttons.Down},
		{Offset: 6, Button: buttons.Left},
		{Offset: 13, Button: buttons.ShoulderLeft},
		{Offset: 19, Button: buttons.ShoulderRight},
		{Offset: 26, Button: buttons.Triangle},
		{Offset: 16, Button: buttons.Circle},
		{Offset: 20, Button: buttons.Cross},
		{Offset: 21, Button: buttons.Square},
	}
}

// ParsePins converts a button-name to line-offset map into pins, ordered by offset.
func ParsePins(m map[string]int) ([]Pin, error) {
	pins := make([]Pin, 0, len(m))
	used := make(map[int]string, len(m))
	for name, offset := range m {
		b, err := buttons.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("gpio pin %q: %w", name, err)
		}
		if offset < 0 {
			return nil, fmt.Errorf("gpio pin %q: negative offset %d", name, offset)
		}
		if other, ok := used[offset]; ok {
			return nil, fmt.Errorf("gpio pin %q: offset %d already used by %q", name, offset, other)
		}
		used[offset] = name
		pins = append(pins, Pin{Offset: offset, Button: b})
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i].Offset < pins[j].Offset })
	return pins, nil
}

// maskOf sums the buttons of the pins whose value is active.
func maskOf(pins []Pin, values []int) int {
	mask := 0
	for i, p := range pins {
		if i < len(values) && values[i] != 0 {
			mask |= int(p.Button)
		}
	}
	return mask
}
