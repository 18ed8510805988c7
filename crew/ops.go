package crew

import (
	"context"
	"fmt"

	"github.com/Comcast/fsm/core"
	"github.com/Comcast/fsm/util"

	"github.com/google/uuid"
)

// Op is a request to do something with a Crew.  Transports (a REPL,
// websockets, MQTT) parse Ops from JSON and hand them to
// Crew.Process.
//
// Examples:
//
//	{"op":"make","id":"m1","config":{"name":"appetite"}}
//	{"op":"trigger","id":"m1","event":"eat"}
//	{"op":"states","id":"m1","event":"eat"}
//	{"op":"undo","id":"m1"}
type Op struct {
	// Op is one of the Op* constants.
	Op string `json:"op"`

	// Id is the machine id.  A "make" without one gets a new
	// UUID, which is returned in the Result.
	Id string `json:"id,omitempty"`

	// Event is for "trigger" and (optionally) "states".
	Event string `json:"event,omitempty"`

	// State is for "change".
	State string `json:"state,omitempty"`

	// Config is for "make".
	Config *ConfigSource `json:"config,omitempty"`

	// Tag is opaque, and it's returned in the Result.
	Tag string `json:"tag,omitempty"`
}

const (
	OpMake    = "make"
	OpRem     = "rem"
	OpList    = "list"
	OpState   = "state"
	OpStates  = "states"
	OpTrigger = "trigger"
	OpChange  = "change"
	OpUndo    = "undo"
	OpRedo    = "redo"
	OpReset   = "reset"
	OpClear   = "clear"
	OpHistory = "history"
)

// Result is the response to an Op.
type Result struct {
	Op  string `json:"op"`
	Id  string `json:"id,omitempty"`
	Tag string `json:"tag,omitempty"`

	// State is the machine's state after the Op.
	State string `json:"state,omitempty"`

	// Previous is the machine's previous state after the Op.
	Previous string `json:"previous,omitempty"`

	// OK is the result of "undo" and "redo".
	OK *bool `json:"ok,omitempty"`

	// States is the result of "states".
	States []string `json:"states,omitempty"`

	// Undo and Redo are the result of "history".
	Undo []string `json:"undo,omitempty"`
	Redo []string `json:"redo,omitempty"`

	// Ids is the result of "list".
	Ids []string `json:"ids,omitempty"`

	Error string `json:"error,omitempty"`
}

// Process performs the given Op.  Problems are reported in
// Result.Error.
func (c *Crew) Process(ctx context.Context, op *Op, p ConfigProvider) *Result {
	r := &Result{
		Op:  op.Op,
		Id:  op.Id,
		Tag: op.Tag,
	}

	util.Logf("crew %s op %s %s", c.Id, op.Op, op.Id)

	if err := c.process(ctx, op, p, r); err != nil {
		util.Logf("crew %s op %s %s error %v", c.Id, op.Op, op.Id, err)
		r.Error = err.Error()
	}

	return r
}

func (c *Crew) process(ctx context.Context, op *Op, p ConfigProvider, r *Result) error {
	switch op.Op {
	case OpList:
		r.Ids = c.Ids()
		return nil
	case OpMake:
		mid := op.Id
		if mid == "" {
			mid = uuid.NewString()
		}
		m, err := c.Make(ctx, mid, op.Config, p)
		if err != nil {
			return err
		}
		r.Id = mid
		return m.Do(func(cm *core.Machine) error {
			r.State = cm.State()
			return nil
		})
	case OpRem:
		return c.Rem(op.Id)
	}

	f, err := machineOp(op, r)
	if err != nil {
		return err
	}

	return c.Do(op.Id, func(m *core.Machine) error {
		err := f(m)
		r.State = m.State()
		r.Previous = m.Previous()
		return err
	})
}

// machineOp returns the function that does what the given Op asks of
// a single machine.
func machineOp(op *Op, r *Result) (func(*core.Machine) error, error) {
	ok := func(b bool) {
		r.OK = &b
	}

	switch op.Op {
	case OpState:
		return func(m *core.Machine) error {
			return nil
		}, nil
	case OpStates:
		return func(m *core.Machine) error {
			if op.Event == "" {
				r.States = m.States()
			} else {
				r.States = m.StatesFor(op.Event)
			}
			return nil
		}, nil
	case OpTrigger:
		return func(m *core.Machine) error {
			return m.Trigger(op.Event)
		}, nil
	case OpChange:
		return func(m *core.Machine) error {
			return m.ChangeState(op.State)
		}, nil
	case OpUndo:
		return func(m *core.Machine) error {
			ok(m.Undo())
			return nil
		}, nil
	case OpRedo:
		return func(m *core.Machine) error {
			ok(m.Redo())
			return nil
		}, nil
	case OpReset:
		return func(m *core.Machine) error {
			m.Reset()
			return nil
		}, nil
	case OpClear:
		return func(m *core.Machine) error {
			m.ClearHistory()
			return nil
		}, nil
	case OpHistory:
		return func(m *core.Machine) error {
			r.Undo, r.Redo = m.History()
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", op.Op)
	}
}
