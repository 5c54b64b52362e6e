package logic

import "testing"

func TestPushShiftsAndDropsOldest(t *testing.T) {
	h := &History{}
	for i := 1; i <= HistorySize+2; i++ {
		h.Push(i)
	}

	slots := h.Slots()
	for i := 0; i < HistorySize; i++ {
		want := HistorySize + 2 - i
		if slots[i] != want {
			t.Errorf("slot %d: got %d, want %d", i, slots[i], want)
		}
	}
	if h.Newest() != HistorySize+2 {
		t.Errorf("Newest: got %d, want %d", h.Newest(), HistorySize+2)
	}
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name  string
		slots []int
		want  int
	}{
		{"empty", nil, 0},
		{"single newest", []int{0x10}, 0x10},
		{"two adjacent", []int{0x10, 0x80}, 0x90},
		{"two adjacent then gap", []int{0x10, 0x80, 0, 0x1}, 0x90},
		{"newest then two zeros", []int{0x10, 0, 0, 0x80}, 0x10},
		{"tolerated gap at index 1 restarts at index 2", []int{0x10, 0, 0x80}, 0x80},
		{"tolerated gap then older run", []int{0x10, 0, 0x80, 0x20, 0, 0x1}, 0xA0},
		{"run of three", []int{0x1, 0x8, 0x10}, 0x19},
		{"newest empty then older run", []int{0, 0x10, 0x20}, 0x30},
		{"newest empty then zero", []int{0, 0, 0x10}, 0},
		{"full run", []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &History{}
			copy(h.slots[:], tt.slots)
			if got := h.Reconstruct(); got != tt.want {
				t.Errorf("Reconstruct(%v): got 0x%X, want 0x%X", tt.slots, got, tt.want)
			}
		})
	}
}

func TestReconstructSingleValueAnyPosition(t *testing.T) {
	for _, v := range []int{0x1, 0x8, 0x10, 0x8000, 0x4010} {
		h := &History{}
		for i := 0; i < HistorySize; i++ {
			h.Push(0)
		}
		h.Push(v)
		if got := h.Reconstruct(); got != v {
			t.Errorf("value 0x%X: got 0x%X", v, got)
		}
	}
}

func TestReconstructZeroIdempotent(t *testing.T) {
	h := &History{}
	for i := 0; i < 3*HistorySize; i++ {
		h.Push(0)
		if got := h.Reconstruct(); got != 0 {
			t.Fatalf("push %d: got 0x%X, want 0", i, got)
		}
	}
}

func TestReconstructFrameCadence(t *testing.T) {
	// A host frame records a keyboard tick (0) followed by each held bit.
	h := &History{}
	for frame := 0; frame < 5; frame++ {
		h.Push(0)
		h.Push(0x10)
		h.Push(0x80)
		if got := h.Reconstruct(); got != 0x90 {
			t.Fatalf("frame %d: got 0x%X, want 0x90", frame, got)
		}
	}

	// A single held button must not accumulate across frames.
	h = &History{}
	for frame := 0; frame < 5; frame++ {
		h.Push(0)
		h.Push(0x10)
		if got := h.Reconstruct(); got != 0x10 {
			t.Fatalf("frame %d: got 0x%X, want 0x10", frame, got)
		}
	}
}
