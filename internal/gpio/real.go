//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the button panel from hardware using the Linux GPIO character device.
type RealReader struct {
	lines  *gpiocdev.Lines
	pins   []Pin
	values []int
}

// NewRealReader requests every pin as an input on chip.
// Buttons pull the line to ground, so lines are active-low with pull-up.
func NewRealReader(chip string, pins []Pin) (*RealReader, error) {
	if len(pins) == 0 {
		return nil, errors.New("gpio: no pins configured")
	}

	offsets := make([]int, len(pins))
	for i, p := range pins {
		offsets[i] = p.Offset
	}

	lines, err := gpiocdev.RequestLines(chip, offsets,
		gpiocdev.AsInput,
		gpiocdev.AsActiveLow,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("pad-input"),
	)
	if err != nil {
		return nil, fmt.Errorf("request lines %v on %s: %w", offsets, chip, err)
	}

	return &RealReader{
		lines:  lines,
		pins:   pins,
		values: make([]int, len(pins)),
	}, nil
}

// Read returns the mask of buttons whose lines are active.
func (r *RealReader) Read() (int, error) {
	if err := r.lines.Values(r.values); err != nil {
		return 0, fmt.Errorf("read lines: %w", err)
	}
	return maskOf(r.pins, r.values), nil
}

// Close releases the lines.
func (r *RealReader) Close() error {
	if r.lines == nil {
		return nil
	}
	if err := r.lines.Close(); err != nil {
		return fmt.Errorf("close lines: %w", err)
	}
	return nil
}
