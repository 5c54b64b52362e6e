package buttons

import "strings"

// SwapCircleCross exchanges Circle and Cross. The keyboard source reports the
// two buttons the other way round from the controller. Any other value,
// including combos, is returned unchanged.
func SwapCircleCross(value int) int {
	switch Button(value) {
	case Circle:
		return int(Cross)
	case Cross:
		return int(Circle)
	}
	return value
}

// Decode returns the buttons making up mask, highest value first.
// With keyboard set, Circle and Cross are exchanged in the result.
// Bits outside the catalog are ignored.
func Decode(mask int, keyboard bool) []Button {
	if mask <= 0 {
		return nil
	}

	// A lone catalog value is returned as is so it can never be split.
	if IsButton(mask) {
		return []Button{swapIf(Button(mask), keyboard)}
	}

	var found []Button
	for _, b := range catalog {
		if mask&int(b) == 0 {
			continue
		}
		mask &^= int(b)
		found = append(found, swapIf(b, keyboard))
	}
	return found
}

// Describe joins button names for log output, e.g. "Left, Up".
func Describe(bs []Button) string {
	if len(bs) == 0 {
		return "none"
	}
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}

func swapIf(b Button, keyboard bool) Button {
	if !keyboard {
		return b
	}
	return Button(SwapCircleCross(int(b)))
}
