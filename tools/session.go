package tools

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/Comcast/fsm/core"

	"github.com/jsccast/yaml"
)

// Step is one operation on a machine along with what should happen.
type Step struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Op is one of "trigger", "change", "undo", "redo", "reset",
	// "clear", "state", or "states".
	Op string `json:"op" yaml:"op"`

	// Arg is the event (for "trigger" and "states") or the
	// state (for "change").
	Arg string `json:"arg,omitempty" yaml:"arg,omitempty"`

	// State, if not empty, is the required state after the Op.
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// OK, if given, is the required result of "undo" or "redo".
	OK *bool `json:"ok,omitempty" yaml:"ok,omitempty"`

	// Error, if not empty, must appear in the Op's error.  If
	// empty, the Op must not fail.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// States, if given, is the required result of "states".
	States []string `json:"states,omitempty" yaml:"states,omitempty"`

	// Undo and Redo, if given, are the required history stacks
	// after the Op.
	Undo []string `json:"undo,omitempty" yaml:"undo,omitempty"`
	Redo []string `json:"redo,omitempty" yaml:"redo,omitempty"`
}

// Session is a configuration and a sequence of Steps to run against
// a new Machine.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Config is the filename of the machine's configuration.  A
	// relative filename is relative to the session file.
	Config string `json:"config,omitempty" yaml:"config,omitempty"`

	// Inline is the YAML text of the machine's configuration.
	// Used if Config is empty.
	Inline string `json:"inline,omitempty" yaml:"inline,omitempty"`

	Steps []Step `json:"steps" yaml:"steps"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	dir string
}

// Mismatch reports the first Step that didn't go as required.
type Mismatch struct {
	Step   int
	Op     string
	Reason string
}

func (e *Mismatch) Error() string {
	return fmt.Sprintf("step %d (%s): %s", e.Step, e.Op, e.Reason)
}

// ReadSession parses the given session file.
func ReadSession(filename string) (*Session, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var s Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	s.dir = filepath.Dir(filename)
	return &s, nil
}

// Machine makes a new Machine from the Session's configuration.
func (s *Session) Machine() (*core.Machine, error) {
	var (
		c   *core.Config
		err error
	)
	switch {
	case s.Config != "":
		filename := s.Config
		if !filepath.IsAbs(filename) {
			filename = filepath.Join(s.dir, filename)
		}
		c, err = core.ReadConfig(filename)
	case s.Inline != "":
		c, err = core.ParseConfig([]byte(s.Inline))
	default:
		err = &core.InvalidArgument{Arg: "session config"}
	}
	if err != nil {
		return nil, err
	}
	return core.NewMachine(c)
}

// Run makes a Machine and runs the Steps against it.
func (s *Session) Run(ctx context.Context) error {
	m, err := s.Machine()
	if err != nil {
		return err
	}
	return s.RunWith(ctx, m)
}

// RunWith runs the Steps against the given Machine.  Returns a
// Mismatch for the first Step that doesn't meet its requirements.
func (s *Session) RunWith(ctx context.Context, m *core.Machine) error {
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Verbose {
			log.Printf("step %d %s %s at %s", i, step.Op, step.Arg, m.State())
		}
		if reason := step.run(m); reason != "" {
			return &Mismatch{
				Step:   i,
				Op:     step.Op,
				Reason: reason,
			}
		}
	}
	return nil
}

// run does the Step and returns a complaint (if any).
func (step *Step) run(m *core.Machine) string {
	var (
		err    error
		ok     *bool
		states []string
	)

	setOK := func(b bool) {
		ok = &b
	}

	switch step.Op {
	case "trigger":
		err = m.Trigger(step.Arg)
	case "change":
		err = m.ChangeState(step.Arg)
	case "undo":
		setOK(m.Undo())
	case "redo":
		setOK(m.Redo())
	case "reset":
		m.Reset()
	case "clear":
		m.ClearHistory()
	case "state":
	case "states":
		if step.Arg == "" {
			states = m.States()
		} else {
			states = m.StatesFor(step.Arg)
		}
	default:
		return fmt.Sprintf("unknown op %q", step.Op)
	}

	switch {
	case err == nil && step.Error != "":
		return fmt.Sprintf("wanted error %q", step.Error)
	case err != nil && step.Error == "":
		return "unexpected error: " + err.Error()
	case err != nil && !strings.Contains(err.Error(), step.Error):
		return fmt.Sprintf("error %q doesn't contain %q", err, step.Error)
	}

	if step.State != "" && m.State() != step.State {
		return fmt.Sprintf("state %q != %q", m.State(), step.State)
	}

	if step.OK != nil {
		if ok == nil {
			return "ok given for an op without a result"
		}
		if *ok != *step.OK {
			return fmt.Sprintf("ok %v != %v", *ok, *step.OK)
		}
	}

	if step.States != nil && !reflect.DeepEqual(states, step.States) {
		return fmt.Sprintf("states %q != %q", states, step.States)
	}

	undo, redo := m.History()
	if step.Undo != nil && !reflect.DeepEqual(undo, step.Undo) {
		return fmt.Sprintf("undo %q != %q", undo, step.Undo)
	}
	if step.Redo != nil && !reflect.DeepEqual(redo, step.Redo) {
		return fmt.Sprintf("redo %q != %q", redo, step.Redo)
	}

	return ""
}
