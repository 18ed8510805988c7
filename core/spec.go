package core

import (
	"sort"
)

// Config is the declarative description of a machine: an initial
// state and the states (in order) with their transitions.
//
// A Config is just data.  Use NewSpec to get the immutable form that
// a Machine uses.
type Config struct {
	// Name is an optional generic name for this machine.
	// Something like "door-lock".
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Doc is optional documentation (markdown).
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Initial is the name of the starting state.
	Initial string `json:"initial,omitempty" yaml:"initial,omitempty"`

	// States is the structure of the machine.  Order matters
	// only for presentation (States(), StatesFor()).
	States []*State `json:"-" yaml:"-"`
}

// State is a named state with its outgoing transitions.
type State struct {
	Name string `json:"-" yaml:"-"`

	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Transitions maps an event name to the name of the target
	// state.
	Transitions map[string]string `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

// Copy makes a deep copy of the Config.
func (c *Config) Copy() *Config {
	ss := make([]*State, len(c.States))
	for i, s := range c.States {
		ss[i] = s.Copy()
	}
	return &Config{
		Name:    c.Name,
		Doc:     c.Doc,
		Initial: c.Initial,
		States:  ss,
	}
}

// State finds the named State (if any).
func (c *Config) State(name string) (*State, bool) {
	for _, s := range c.States {
		if s != nil && s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Copy makes a deep copy of the State.
func (s *State) Copy() *State {
	if s == nil {
		return nil
	}
	ts := make(map[string]string, len(s.Transitions))
	for event, target := range s.Transitions {
		ts[event] = target
	}
	return &State{
		Name:        s.Name,
		Doc:         s.Doc,
		Transitions: ts,
	}
}

// Spec is the immutable snapshot of a Config that Machines consult.
//
// A Spec is safe to share among Machines (and goroutines) since
// nothing changes it after NewSpec.
type Spec struct {
	name    string
	doc     string
	initial string
	order   []string
	states  map[string]*State
}

// NewSpec copies the recognized parts of the given Config.
//
// Empty parts are just omitted.  A state that appears twice keeps its
// first position but gets its last definition.  Transition targets
// are not checked.
func NewSpec(c *Config) (*Spec, error) {
	if c == nil {
		return nil, &InvalidArgument{"configuration"}
	}

	s := &Spec{
		name:    c.Name,
		doc:     c.Doc,
		initial: c.Initial,
		order:   make([]string, 0, len(c.States)),
		states:  make(map[string]*State, len(c.States)),
	}

	for _, st := range c.States {
		if st == nil || st.Name == "" {
			continue
		}
		if _, have := s.states[st.Name]; !have {
			s.order = append(s.order, st.Name)
		}
		s.states[st.Name] = st.Copy()
	}

	return s, nil
}

// Name returns the Config's name (if any).
func (s *Spec) Name() string {
	return s.name
}

// InitialState returns the configured initial state.
func (s *Spec) InitialState() string {
	return s.initial
}

// StateIds returns the names of all states in the order they were
// given.
func (s *Spec) StateIds() []string {
	acc := make([]string, len(s.order))
	copy(acc, s.order)
	return acc
}

// Has reports whether the named state is configured.
func (s *Spec) Has(state string) bool {
	_, have := s.states[state]
	return have
}

// TransitionsOf returns a copy of the event-to-target mapping for the
// given state.  Returns false if the state is unknown.
func (s *Spec) TransitionsOf(state string) (map[string]string, bool) {
	st, have := s.states[state]
	if !have {
		return nil, false
	}
	return st.Copy().Transitions, true
}

// target is TransitionsOf without the copy.
func (s *Spec) target(state, event string) (string, bool) {
	st, have := s.states[state]
	if !have {
		return "", false
	}
	to, have := st.Transitions[event]
	return to, have
}

// Events returns the sorted event names defined on the given state.
func (s *Spec) Events(state string) []string {
	st, have := s.states[state]
	if !have {
		return nil
	}
	acc := make([]string, 0, len(st.Transitions))
	for event := range st.Transitions {
		acc = append(acc, event)
	}
	sort.Strings(acc)
	return acc
}

// Doc returns the documentation for the given state or, when given
// the empty string, for the Spec itself.
func (s *Spec) Doc(state string) string {
	if state == "" {
		return s.doc
	}
	if st, have := s.states[state]; have {
		return st.Doc
	}
	return ""
}

// Config returns a new Config equivalent to this Spec.
func (s *Spec) Config() *Config {
	c := &Config{
		Name:    s.name,
		Doc:     s.doc,
		Initial: s.initial,
		States:  make([]*State, 0, len(s.order)),
	}
	for _, name := range s.order {
		c.States = append(c.States, s.states[name].Copy())
	}
	return c
}
