// Package goja lets JavaScript drive a core.Machine.
//
// Hosts (games, test rigs, the fsmsh REPL) can hand a script a
// machine.  The script sees a global "machine" object:
//
//	machine.state()           the current state
//	machine.previous()        the previous state
//	machine.trigger(event)    throws if the event doesn't exist
//	machine.change(state)     throws if the state doesn't exist
//	machine.undo()            returns a boolean
//	machine.redo()            returns a boolean
//	machine.reset()
//	machine.clearHistory()
//	machine.states([event])   all states, or those with the event
//	machine.history()         {undo: [...], redo: [...]}
//
// There's also print(x).  The value of the script's last expression
// is returned.
//
// Scripts run synchronously on the caller's goroutine, so the usual
// rule applies: don't let two goroutines use the same Machine.
package goja

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Comcast/fsm/core"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// Interpreter runs scripts with Goja, which is a Go implementation
// of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Printf is used by the script's print().  Defaults to
	// log.Printf.
	Printf func(format string, args ...interface{})
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		Printf: log.Printf,
	}
}

// Compile compiles the given source.
func (i *Interpreter) Compile(ctx context.Context, src string) (*goja.Program, error) {
	p, err := goja.Compile("", src, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + src)
	}
	return p, nil
}

// Run compiles and executes the given source.
func (i *Interpreter) Run(ctx context.Context, m *core.Machine, src string) (interface{}, error) {
	p, err := i.Compile(ctx, src)
	if err != nil {
		return nil, err
	}
	return i.Exec(ctx, m, p)
}

func protest(o *goja.Runtime, err error) {
	panic(o.NewGoError(err))
}

// Exec runs the compiled program against the given Machine.
//
// If the context is done before the program finishes, the program is
// interrupted and Exec returns Interrupted.
func (i *Interpreter) Exec(ctx context.Context, m *core.Machine, p *goja.Program) (interface{}, error) {
	o := goja.New()

	if err := o.Set("machine", i.env(o, m)); err != nil {
		return nil, err
	}

	printf := i.Printf
	if printf == nil {
		printf = log.Printf
	}
	o.Set("print", func(x interface{}) {
		printf("%v", x)
	})

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If Exec calls cancel() after RunProgram returns, the
		// interrupt lands on a finished runtime.  That's fine.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	if v == nil {
		return nil, nil
	}
	return v.Export(), nil
}

func (i *Interpreter) env(o *goja.Runtime, m *core.Machine) map[string]interface{} {
	return map[string]interface{}{
		"state": func() string {
			return m.State()
		},
		"previous": func() string {
			return m.Previous()
		},
		"trigger": func(event string) string {
			if err := m.Trigger(event); err != nil {
				protest(o, err)
			}
			return m.State()
		},
		"change": func(state string) string {
			if err := m.ChangeState(state); err != nil {
				protest(o, err)
			}
			return m.State()
		},
		"undo": func() bool {
			return m.Undo()
		},
		"redo": func() bool {
			return m.Redo()
		},
		"reset": func() string {
			m.Reset()
			return m.State()
		},
		"clearHistory": func() {
			m.ClearHistory()
		},
		"states": func(call goja.FunctionCall) goja.Value {
			arg := call.Argument(0)
			if goja.IsUndefined(arg) || goja.IsNull(arg) {
				return o.ToValue(toArray(m.States()))
			}
			return o.ToValue(toArray(m.StatesFor(arg.String())))
		},
		"history": func() map[string]interface{} {
			undo, redo := m.History()
			return map[string]interface{}{
				"undo": toArray(undo),
				"redo": toArray(redo),
			}
		},
	}
}

// toArray makes a []interface{}, which Goja treats as a proper JS
// array.
func toArray(ss []string) []interface{} {
	acc := make([]interface{}, len(ss))
	for i, s := range ss {
		acc[i] = s
	}
	return acc
}

// String is a convenience for callers that expect a string result.
func String(x interface{}) (string, error) {
	s, is := x.(string)
	if !is {
		return "", fmt.Errorf("%#v (%T) isn't a string", x, x)
	}
	return s, nil
}
