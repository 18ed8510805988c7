package core

// Machine is a running instance of a Spec: a current state, the state
// before that, and a History.
//
// A Machine does no locking.  Confine each Machine to one goroutine
// at a time (or wrap it in a mutex as package crew does).
type Machine struct {
	spec      *Spec
	current   string
	previous  string
	history   History
	observers []Observer
}

// NewMachine makes a Spec from the given Config and returns a new
// Machine for it.
func NewMachine(c *Config) (*Machine, error) {
	spec, err := NewSpec(c)
	if err != nil {
		return nil, err
	}
	return spec.NewMachine(), nil
}

// NewMachine returns a new Machine at the Spec's initial state with
// an empty History.
func (s *Spec) NewMachine() *Machine {
	return &Machine{
		spec:     s,
		current:  s.initial,
		previous: s.initial,
	}
}

// Spec returns the Machine's Spec.
func (m *Machine) Spec() *Spec {
	return m.spec
}

// State returns the current state.
func (m *Machine) State() string {
	return m.current
}

// Previous returns the state the Machine was in before the most
// recent move.  After an Undo that empties the undo stack, the result
// is "".
func (m *Machine) Previous() string {
	return m.previous
}

// ChangeState goes directly to the given state, ignoring transitions.
//
// Returns an UnknownState error if the state isn't configured.  Even
// then, the oldest redo entry might have been dropped (see
// History.Trim), and Previous() becomes the current state.
func (m *Machine) ChangeState(state string) error {
	m.history.Trim()

	m.previous = m.current

	if !m.spec.Has(state) {
		return &UnknownState{state}
	}

	m.current = state
	m.history.Record(m.previous, m.current)
	m.stride(OpChange, "", m.previous, m.current)

	return nil
}

// Trigger follows the current state's transition for the given
// event.
//
// Returns an UnknownEvent error if the current state has no such
// transition.  As with ChangeState, the History might have been
// trimmed anyway.
func (m *Machine) Trigger(event string) error {
	m.previous = m.current

	m.history.Trim()

	to, have := m.spec.target(m.current, event)
	if !have {
		return &UnknownEvent{event, m.current}
	}

	m.current = to
	m.history.Record(m.previous, m.current)
	m.stride(OpTrigger, event, m.previous, m.current)

	return nil
}

// Reset returns to the initial state.  Previous() and the History
// are not changed.
func (m *Machine) Reset() {
	from := m.current
	m.current = m.spec.initial
	m.stride(OpReset, "", from, m.current)
}

// States returns all configured states in order.
func (m *Machine) States() []string {
	return m.spec.StateIds()
}

// StatesFor returns, in order, the states that have a transition for
// the given event.  The result is empty (not nil) when no state
// does.
func (m *Machine) StatesFor(event string) []string {
	acc := make([]string, 0, len(m.spec.order))
	for _, name := range m.spec.order {
		if _, have := m.spec.states[name].Transitions[event]; have {
			acc = append(acc, name)
		}
	}
	return acc
}

// Undo goes back to the state that the most recent recorded
// transition left.  Returns false if there's nothing to undo.
//
// The redo stack is not touched.
func (m *Machine) Undo() bool {
	state, previous, ok := m.history.Pop()
	if !ok {
		return false
	}
	from := m.current
	m.current = state
	m.previous = previous
	m.stride(OpUndo, "", from, m.current)
	return true
}

// Redo goes to the oldest state on the redo stack.  Returns false if
// that stack is empty or if its oldest entry is the current state.
//
// The undo stack is not touched.
func (m *Machine) Redo() bool {
	state, ok := m.history.Shift(m.current)
	if !ok {
		return false
	}
	from := m.current
	m.current = state
	m.stride(OpRedo, "", from, m.current)
	return true
}

// ClearHistory empties both history stacks.
func (m *Machine) ClearHistory() {
	m.history.Clear()
}

// History returns copies of the undo and redo stacks.
func (m *Machine) History() (undo, redo []string) {
	return m.history.Stacks()
}
