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
	"bytes"
	"context"
	"strings"
	"testing"

	. "github.com/Comcast/fsm/util/testutil"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	config := `
initial: dark
states:
  dark:
    transitions: {flip: lit}
  lit:
    transitions: {flip: dark}
`
	WriteFile(t, dir, "light.yaml", config)

	good := WriteFile(t, dir, "good.test.yaml", `
config: light.yaml
steps:
  - op: trigger
    arg: flip
    state: lit
  - op: undo
    ok: true
    state: dark
`)
	bad := WriteFile(t, dir, "bad.test.yaml", `
config: light.yaml
steps:
  - op: trigger
    arg: flip
    state: dark
`)

	var out bytes.Buffer
	failed := run(context.Background(), []string{good, bad, dir + "/missing.yaml"}, false, &out)
	if failed != 2 {
		t.Fatal(failed, out.String())
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatal(out.String())
	}
	if !strings.HasPrefix(lines[0], "ok   ") || !strings.Contains(lines[0], "(2 steps)") {
		t.Fatal(lines[0])
	}
	if !strings.HasPrefix(lines[1], "FAIL ") || !strings.Contains(lines[1], "step 0") {
		t.Fatal(lines[1])
	}
	if !strings.HasPrefix(lines[2], "FAIL ") {
		t.Fatal(lines[2])
	}
}
