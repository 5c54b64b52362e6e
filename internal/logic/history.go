package logic

// HistorySize is the number of controller samples kept for combo reconstruction.
const HistorySize = 10

// History is a fixed-size record of raw controller samples, newest at index 0.
// A zero slot marks a tick where nothing was pressed on the controller.
type History struct {
	slots [HistorySize]int
}

// Push shifts every slot one place older, dropping the oldest, and stores v
// as the newest sample.
func (h *History) Push(v int) {
	for i := HistorySize - 1; i > 0; i-- {
		h.slots[i] = h.slots[i-1]
	}
	h.slots[0] = v
}

// Newest returns the most recent sample.
func (h *History) Newest() int {
	return h.slots[0]
}

// Slots returns a copy of the samples, newest first.
func (h *History) Slots() [HistorySize]int {
	return h.slots
}

// Reconstruct merges the run of recent samples into the mask of what is
// currently held. Simultaneous presses often arrive as single bits a tick
// apart, so a run of nonzero samples is summed. A single zero at index 1 is
// tolerated; any other zero after a sample, or two zeros in a row, ends the run.
func (h *History) Reconstruct() int {
	combo := 0
	previous := 0
	for i, v := range h.slots {
		switch {
		case previous == 0 && v != 0:
			// start of a combo
			combo = v
		case previous != 0 && v != 0:
			combo += v
		case v == 0 && previous != 0 && i != 1:
			return combo
		case i != 0 && v == 0 && previous == 0:
			return combo
		}
		previous = v
	}
	return combo
}
