/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Comcast/fsm/core"
	js "github.com/Comcast/fsm/interpreters/goja"
	"github.com/Comcast/fsm/storage"
	. "github.com/Comcast/fsm/util/testutil"
)

var (
	id = "([-a-zA-Z0-9_.]+)"

	loadCmd    = regexp.MustCompile("^load +(.+)$")
	getCmd     = regexp.MustCompile("^get +" + id + "$")
	saveCmd    = regexp.MustCompile("^save +" + id + "$")
	savedCmd   = regexp.MustCompile("^saved$")
	stateCmd   = regexp.MustCompile("^(state|print)$")
	statesCmd  = regexp.MustCompile("^states( +" + id + ")?$")
	triggerCmd = regexp.MustCompile("^(trigger|t) +" + id + "$")
	changeCmd  = regexp.MustCompile("^(change|c) +" + id + "$")
	undoCmd    = regexp.MustCompile("^(undo|u)$")
	redoCmd    = regexp.MustCompile("^(redo|r)$")
	resetCmd   = regexp.MustCompile("^reset$")
	clearCmd   = regexp.MustCompile("^clear$")
	historyCmd = regexp.MustCompile("^(history|hist)$")
	jsCmd      = regexp.MustCompile("^js +(.*)$")
	watchCmd   = regexp.MustCompile("^watch (on|off)$")
	helpCmd    = regexp.MustCompile("^(help|h|\\?)$")
)

// Shell interprets commands against one machine.
type Shell struct {
	// Store, if not nil, backs "get", "save", and "saved".
	Store storage.Store

	// Echo input lines.
	Echo bool

	// OutputPrefix starts every line of output.
	OutputPrefix string

	out      io.Writer
	machine  *core.Machine
	watching bool
	interp   *js.Interpreter
}

func NewShell(out io.Writer) *Shell {
	sh := &Shell{
		OutputPrefix: "# ",
		out:          out,
		interp:       js.NewInterpreter(),
	}
	sh.interp.Printf = sh.say
	return sh
}

func (sh *Shell) say(format string, args ...interface{}) {
	fmt.Fprintf(sh.out, sh.OutputPrefix+format+"\n", args...)
}

func (sh *Shell) protest(format string, args ...interface{}) {
	sh.say("error: "+format, args...)
}

// Run reads commands until EOF.
func (sh *Shell) Run(ctx context.Context, in io.Reader) error {
	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if line != "" {
			if err := sh.Do(ctx, line); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// Do executes a single command.  Only an I/O problem results in an
// error.  Other problems are reported as output.
func (sh *Shell) Do(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)

	if sh.Echo {
		fmt.Fprintln(sh.out, line)
	}

	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	var ss []string

	if ss = helpCmd.FindStringSubmatch(line); 0 < len(ss) {
		for _, s := range strings.Split(doc(), "\n") {
			sh.say("%s", s)
		}
		return nil
	}

	if ss = loadCmd.FindStringSubmatch(line); 0 < len(ss) {
		c, err := core.ReadConfig(ss[1])
		if err != nil {
			sh.protest("%s", err)
			return nil
		}
		sh.use(c)
		return nil
	}

	if ss = savedCmd.FindStringSubmatch(line); 0 < len(ss) {
		if sh.Store == nil {
			sh.protest("no store")
			return nil
		}
		names, err := sh.Store.List(ctx)
		if err != nil {
			sh.protest("%s", err)
			return nil
		}
		sh.say("saved: %s", strings.Join(names, " "))
		return nil
	}

	if ss = getCmd.FindStringSubmatch(line); 0 < len(ss) {
		if sh.Store == nil {
			sh.protest("no store")
			return nil
		}
		c, err := sh.Store.Get(ctx, ss[1])
		if err != nil {
			sh.protest("%s", err)
			return nil
		}
		sh.use(c)
		return nil
	}

	// The remaining commands need a machine.
	m := sh.machine
	if m == nil {
		sh.protest("no machine (try 'load FILENAME')")
		return nil
	}

	switch {
	case saveCmd.MatchString(line):
		if sh.Store == nil {
			sh.protest("no store")
			return nil
		}
		name := saveCmd.FindStringSubmatch(line)[1]
		if err := sh.Store.Put(ctx, name, m.Spec().Config()); err != nil {
			sh.protest("%s", err)
			return nil
		}
		sh.say("saved %s", name)

	case stateCmd.MatchString(line):
		sh.print(m)

	case statesCmd.MatchString(line):
		ss = statesCmd.FindStringSubmatch(line)
		if event := ss[2]; event != "" {
			sh.say("states with %s: %s", event, strings.Join(m.StatesFor(event), " "))
		} else {
			sh.say("states: %s", strings.Join(m.States(), " "))
		}

	case triggerCmd.MatchString(line):
		ss = triggerCmd.FindStringSubmatch(line)
		if err := m.Trigger(ss[2]); err != nil {
			sh.protest("%s", err)
		}
		sh.print(m)

	case changeCmd.MatchString(line):
		ss = changeCmd.FindStringSubmatch(line)
		if err := m.ChangeState(ss[2]); err != nil {
			sh.protest("%s", err)
		}
		sh.print(m)

	case undoCmd.MatchString(line):
		if !m.Undo() {
			sh.say("nothing to undo")
		}
		sh.print(m)

	case redoCmd.MatchString(line):
		if !m.Redo() {
			sh.say("nothing to redo")
		}
		sh.print(m)

	case resetCmd.MatchString(line):
		m.Reset()
		sh.print(m)

	case clearCmd.MatchString(line):
		m.ClearHistory()
		sh.say("history cleared")

	case historyCmd.MatchString(line):
		undo, redo := m.History()
		sh.say("undo: %s", strings.Join(undo, " "))
		sh.say("redo: %s", strings.Join(redo, " "))

	case watchCmd.MatchString(line):
		sh.watching = watchCmd.FindStringSubmatch(line)[1] == "on"

	case jsCmd.MatchString(line):
		x, err := sh.interp.Run(ctx, m, jsCmd.FindStringSubmatch(line)[1])
		if err != nil {
			sh.protest("%s", err)
			return nil
		}
		if x != nil {
			sh.say("%s", JS(x))
		}

	default:
		sh.protest("unsupported command: %s", line)
	}

	return nil
}

// use replaces the shell's machine with a new one for the given
// config.
func (sh *Shell) use(c *core.Config) {
	m, err := core.NewMachine(c)
	if err != nil {
		sh.protest("%s", err)
		return
	}
	m.Observe(func(s *core.Stride) {
		if sh.watching {
			sh.say("stride %s", s)
		}
	})
	sh.machine = m
	sh.say("loaded %s (%d states)", c.Name, len(m.States()))
	sh.print(m)
}

func (sh *Shell) print(m *core.Machine) {
	sh.say("state: %s (previous: %s)", m.State(), m.Previous())
}

func doc() string {
	return `
  load FILENAME        Make a new machine from the configuration in that file
  get NAME             Make a new machine from a saved configuration
  save NAME            Save the machine's configuration
  saved                List the saved configurations
  state                Show the current and previous states
  states [EVENT]       Show all states or those with a transition for EVENT
  trigger EVENT        Follow the current state's transition for EVENT
  change STATE         Go directly to STATE
  undo                 Undo the last transition
  redo                 Redo a transition
  reset                Go to the initial state
  clear                Clear the undo and redo history
  history              Show the undo and redo stacks
  watch on/off         Show each move
  js SRC               Run ECMAScript with 'machine' bound
  help                 Show this documentation
`
}
