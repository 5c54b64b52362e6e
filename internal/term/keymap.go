// Package term is the keyboard source: it reads key presses from the terminal
// and maps them to buttons.
package term

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/sweeney/pad-input/internal/buttons"
)

// KeyMap maps key names to the buttons they report. Rune keys are named by
// their lower-case character, other keys by the names in specialKeys.
// Buttons are given as the keyboard source reports them, so Circle and
// Cross are swapped relative to the controller.
type KeyMap map[string]buttons.Button

var specialKeys = map[tcell.Key]string{
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyEnter:      "enter",
	tcell.KeyTab:        "tab",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyPgUp:       "pgup",
	tcell.KeyPgDn:       "pgdn",
}

// DefaultKeyMap is the layout used when the config names no keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"up":        buttons.Up,
		"down":      buttons.Down,
		"left":      buttons.Left,
		"right":     buttons.Right,
		"w":         buttons.Up,
		"s":         buttons.Down,
		"a":         buttons.Left,
		"d":         buttons.Right,
		"enter":     buttons.Start,
		"backspace": buttons.Select,
		"q":         buttons.ShoulderLeft,
		"e":         buttons.ShoulderRight,
		"i":         buttons.Triangle,
		"j":         buttons.Square,
		"k":         buttons.Circle,
		"l":         buttons.Cross,
	}
}

// ParseKeyMap converts a key-name to button-name map from the config.
func ParseKeyMap(m map[string]string) (KeyMap, error) {
	km := make(KeyMap, len(m))
	for key, name := range m {
		k := strings.ToLower(strings.TrimSpace(key))
		if !validKeyName(k) {
			return nil, fmt.Errorf("keyboard key %q: not a single character or known key name", key)
		}
		b, err := buttons.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("keyboard key %q: %w", key, err)
		}
		km[k] = b
	}
	return km, nil
}

func validKeyName(k string) bool {
	if utf8.RuneCountInString(k) == 1 {
		return true
	}
	for _, name := range specialKeys {
		if name == k {
			return true
		}
	}
	return false
}

// Lookup returns the button for a key event.
func (m KeyMap) Lookup(ev *tcell.EventKey) (buttons.Button, bool) {
	name := keyName(ev)
	if name == "" {
		return 0, false
	}
	b, ok := m[name]
	return b, ok
}

func keyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		return strings.ToLower(string(ev.Rune()))
	}
	return specialKeys[ev.Key()]
}

// isQuit reports whether the key ends the keyboard source.
func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
}
