// Package buttons holds the catalog of logical pad buttons and decodes
// combined bitmasks back into the buttons they represent.
// Values match the raw codes delivered by the keyboard and controller sources.
package buttons

import (
	"fmt"
	"strings"
)

// Button is a single logical button. Every button owns a distinct bit.
type Button int

const (
	Select        Button = 0x1
	Start         Button = 0x8
	Up            Button = 0x10
	Right         Button = 0x20
	Down          Button = 0x40
	Left          Button = 0x80
	ShoulderLeft  Button = 0x400
	ShoulderRight Button = 0x800
	Triangle      Button = 0x1000
	Circle        Button = 0x2000
	Cross         Button = 0x4000
	Square        Button = 0x8000
)

// catalog is ordered by descending value.
var catalog = []Button{
	Square,
	Cross,
	Circle,
	Triangle,
	ShoulderRight,
	ShoulderLeft,
	Left,
	Down,
	Right,
	Up,
	Start,
	Select,
}

var names = map[Button]string{
	Select:        "Select",
	Start:         "Start",
	Up:            "Up",
	Right:         "Right",
	Down:          "Down",
	Left:          "Left",
	ShoulderLeft:  "ShoulderLeft",
	ShoulderRight: "ShoulderRight",
	Triangle:      "Triangle",
	Circle:        "Circle",
	Cross:         "Cross",
	Square:        "Square",
}

// aliases accepted by Parse in addition to the canonical names.
var aliases = map[string]Button{
	"l1": ShoulderLeft,
	"lb": ShoulderLeft,
	"r1": ShoulderRight,
	"rb": ShoulderRight,
}

// Catalog returns every button, highest value first.
func Catalog() []Button {
	out := make([]Button, len(catalog))
	copy(out, catalog)
	return out
}

func (b Button) String() string {
	if name, ok := names[b]; ok {
		return name
	}
	return fmt.Sprintf("Button(0x%X)", int(b))
}

// IsButton reports whether value is exactly one catalog button.
func IsButton(value int) bool {
	_, ok := names[Button(value)]
	return ok
}

// Parse returns the button with the given name. Matching is case-insensitive.
func Parse(name string) (Button, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return 0, fmt.Errorf("button name is empty")
	}
	for b, n := range names {
		if strings.ToLower(n) == key {
			return b, nil
		}
	}
	if b, ok := aliases[key]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// Mask sums the given buttons into a combo mask.
func Mask(bs ...Button) int {
	mask := 0
	for _, b := range bs {
		mask |= int(b)
	}
	return mask
}

// Bits splits mask into its catalog bits, lowest first. Unknown bits are dropped.
func Bits(mask int) []int {
	var out []int
	for i := len(catalog) - 1; i >= 0; i-- {
		if mask&int(catalog[i]) != 0 {
			out = append(out, int(catalog[i]))
		}
	}
	return out
}
