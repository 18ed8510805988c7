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
	"reflect"
	"testing"

	"github.com/Comcast/fsm/core"
)

func TestAnalyze(t *testing.T) {
	c, err := core.ParseConfig([]byte(`
initial: hungry
states:
  hungry:
    transitions: {eat: full}
  full:
    transitions: {rest: sleeping, binge: sick}
  sleeping: {}
  dreaming:
    transitions: {wake: hungry}
`))
	if err != nil {
		t.Fatal(err)
	}

	a, err := Analyze(c)
	if err != nil {
		t.Fatal(err)
	}

	if a.States != 4 || a.Transitions != 4 {
		t.Fatal(a.States, a.Transitions)
	}
	if len(a.Errors) != 0 {
		t.Fatal(a.Errors)
	}
	if !reflect.DeepEqual(a.Terminal, []string{"sleeping"}) {
		t.Fatal(a.Terminal)
	}
	if !reflect.DeepEqual(a.Unreachable, []string{"dreaming"}) {
		t.Fatal(a.Unreachable)
	}
	if !reflect.DeepEqual(a.MissingTargets, []string{"sick"}) {
		t.Fatal(a.MissingTargets)
	}
}

func TestAnalyzeBadInitial(t *testing.T) {
	a, err := Analyze(&core.Config{
		Initial: "nowhere",
		States: []*core.State{
			{Name: "here"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Errors) != 1 {
		t.Fatal(a.Errors)
	}
	if !reflect.DeepEqual(a.Unreachable, []string{"here"}) {
		t.Fatal(a.Unreachable)
	}
}
