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

package tools

import (
	"sort"

	"github.com/Comcast/fsm/core"
)

// Analysis reports some properties of a configuration that might be
// mistakes.
type Analysis struct {
	States      int `json:"states"`
	Transitions int `json:"transitions"`

	// Errors are problems that make the configuration unusable
	// for some operations.
	Errors []string `json:"errors,omitempty"`

	// Terminal states have no transitions.
	Terminal []string `json:"terminal,omitempty"`

	// Unreachable states can't be reached from the initial
	// state by triggering events.  ChangeState can still get
	// there.
	Unreachable []string `json:"unreachable,omitempty"`

	// MissingTargets are transition targets that aren't
	// configured states.
	MissingTargets []string `json:"missingTargets,omitempty"`
}

// Analyze looks for problems with the given configuration.
func Analyze(c *core.Config) (*Analysis, error) {
	spec, err := core.NewSpec(c)
	if err != nil {
		return nil, err
	}

	ids := spec.StateIds()
	a := &Analysis{
		States: len(ids),
	}

	initial := spec.InitialState()
	if initial == "" {
		a.Errors = append(a.Errors, "no initial state")
	} else if !spec.Has(initial) {
		a.Errors = append(a.Errors, "initial state "+initial+" isn't configured")
	}

	missing := make(map[string]bool)
	for _, id := range ids {
		ts, _ := spec.TransitionsOf(id)
		a.Transitions += len(ts)
		if len(ts) == 0 {
			a.Terminal = append(a.Terminal, id)
		}
		for _, to := range ts {
			if !spec.Has(to) {
				missing[to] = true
			}
		}
	}
	a.MissingTargets = keys(missing)

	reached := reachable(spec, initial)
	for _, id := range ids {
		if !reached[id] {
			a.Unreachable = append(a.Unreachable, id)
		}
	}

	return a, nil
}

// reachable returns the set of configured states reachable from the
// given state via transitions.
func reachable(spec *core.Spec, from string) map[string]bool {
	reached := make(map[string]bool)
	if !spec.Has(from) {
		return reached
	}
	pending := []string{from}
	reached[from] = true
	for 0 < len(pending) {
		id := pending[0]
		pending = pending[1:]
		ts, _ := spec.TransitionsOf(id)
		for _, to := range ts {
			if !reached[to] && spec.Has(to) {
				reached[to] = true
				pending = append(pending, to)
			}
		}
	}
	return reached
}

func keys(m map[string]bool) []string {
	var acc []string
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}
