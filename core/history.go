package core

// History records the transitions a Machine has made so that they
// can be undone and redone.
//
// The undo stack holds the states that transitions left (most recent
// last).  The redo stack holds the states that transitions entered
// (most recent last), but it's consumed from the front.  The two
// stacks grow together but shrink independently.
//
// Not thread-safe.
type History struct {
	undo []string
	redo []string
}

// Record notes a committed transition from one state to another.
func (h *History) Record(from, to string) {
	h.undo = append(h.undo, from)
	h.redo = append(h.redo, to)
}

// Trim drops the oldest redo entry when everything has been undone
// and nothing has been redone since.
//
// Only one entry goes, not the whole redo stack.
func (h *History) Trim() {
	if len(h.undo) == 0 && 0 < len(h.redo) {
		h.redo = h.redo[1:]
	}
}

// Pop removes the most recent undo entry.  It also returns the new
// most recent undo entry (or "" if there isn't one).
func (h *History) Pop() (state string, previous string, ok bool) {
	n := len(h.undo)
	if n == 0 {
		return "", "", false
	}
	state = h.undo[n-1]
	h.undo = h.undo[:n-1]
	if 1 < n {
		previous = h.undo[n-2]
	}
	return state, previous, true
}

// Shift removes and returns the oldest redo entry unless that entry
// is the given current state.
func (h *History) Shift(current string) (string, bool) {
	if len(h.redo) == 0 || h.redo[0] == current {
		return "", false
	}
	state := h.redo[0]
	h.redo = h.redo[1:]
	return state, true
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Len returns the sizes of the two stacks.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Stacks returns copies of the two stacks.
func (h *History) Stacks() (undo, redo []string) {
	undo = make([]string, len(h.undo))
	copy(undo, h.undo)
	redo = make([]string, len(h.redo))
	copy(redo, h.redo)
	return undo, redo
}
