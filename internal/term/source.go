package term

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/sweeney/pad-input/internal/buttons"
)

// Poller yields terminal events. tcell.Screen satisfies it; PollEvent returns
// nil once the screen is finalised.
type Poller interface {
	PollEvent() tcell.Event
}

// Open initialises a terminal screen for reading keys.
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()
	return screen, nil
}

// Poll reads events until p returns nil. Mapped key presses are sent to out.
// Escape and Ctrl-C call quit once; polling continues until p is closed.
func Poll(p Poller, keys KeyMap, out chan<- buttons.Button, quit func()) {
	var once sync.Once
	for {
		ev := p.PollEvent()
		if ev == nil {
			return
		}
		kev, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		if isQuit(kev) {
			if quit != nil {
				once.Do(quit)
			}
			continue
		}
		if b, ok := keys.Lookup(kev); ok {
			out <- b
		}
	}
}

// KeyState tracks which keys count as held. A terminal only reports key
// presses (and auto-repeat), so a key is held until hold has passed since
// its last press.
type KeyState struct {
	hold    time.Duration
	pressed map[buttons.Button]time.Time
}

// NewKeyState creates a KeyState with the given hold window.
func NewKeyState(hold time.Duration) *KeyState {
	return &KeyState{
		hold:    hold,
		pressed: make(map[buttons.Button]time.Time),
	}
}

// Press records a press of b at t.
func (s *KeyState) Press(b buttons.Button, t time.Time) {
	s.pressed[b] = t
}

// Mask returns the combined mask of keys held at t. Expired keys are forgotten.
func (s *KeyState) Mask(t time.Time) int {
	mask := 0
	for b, at := range s.pressed {
		if t.Sub(at) >= s.hold {
			delete(s.pressed, b)
			continue
		}
		mask |= int(b)
	}
	return mask
}
