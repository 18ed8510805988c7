package core

import (
	"encoding/json"
)

// Op names the kind of operation that moved a Machine.
type Op string

const (
	OpChange  Op = "change"
	OpTrigger Op = "trigger"
	OpUndo    Op = "undo"
	OpRedo    Op = "redo"
	OpReset   Op = "reset"
)

// Stride represents a committed move of a Machine from one state to
// another.
type Stride struct {
	// Op is the operation that made the move.
	Op Op `json:"op"`

	// Event is the event given to Trigger (if any).
	Event string `json:"event,omitempty"`

	// From is the state before the move.
	From string `json:"from"`

	// To is the state after the move.
	To string `json:"to"`
}

func (s *Stride) String() string {
	if s == nil {
		return "nil"
	}
	js, err := json.Marshal(s)
	if err != nil {
		return s.From + "->" + s.To
	}
	return string(js)
}

// Observer is called synchronously after each committed Stride.
type Observer func(*Stride)

// Observe adds an Observer.  Observers are called in the order they
// were added, on the goroutine that moved the Machine.
//
// An Observer must not call back into the Machine.
func (m *Machine) Observe(o Observer) {
	m.observers = append(m.observers, o)
}

func (m *Machine) stride(op Op, event, from, to string) {
	if len(m.observers) == 0 {
		return
	}
	s := &Stride{
		Op:    op,
		Event: event,
		From:  from,
		To:    to,
	}
	for _, o := range m.observers {
		o(s)
	}
}
