package hook

import (
	"github.com/rs/zerolog"

	"github.com/sweeney/pad-input/internal/buttons"
	"github.com/sweeney/pad-input/internal/event"
	"github.com/sweeney/pad-input/internal/logic"
)

// Diagnostics returns a subscriber that logs every event at debug level with
// its decoded button names.
func Diagnostics(log zerolog.Logger) event.Handler {
	return func(e logic.Event) {
		l := log.Debug()
		if !l.Enabled() {
			return
		}
		l.Str("source", string(e.Source())).
			Str("edge", e.Edge().String()).
			Int("mask", e.Mask).
			Str("buttons", Describe(e)).
			Bool("inferred", e.Inferred).
			Msg("input")
	}
}

// Describe names the buttons of an event, e.g. "Left, Up".
func Describe(e logic.Event) string {
	return buttons.Describe(e.Buttons())
}
