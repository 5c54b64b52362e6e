package logic

// Classify compares current against the last processed value for a source.
// A change to a nonzero value is rising; otherwise a change away from a
// nonzero value is falling. Rising wins when both hold.
func Classify(current, last int) Edge {
	if current != 0 && current != last {
		return EdgeRising
	}
	if last != 0 && current != last {
		return EdgeFalling
	}
	return EdgeNone
}
