package crew

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Comcast/fsm/core"
	. "github.com/Comcast/fsm/util/testutil"

	"github.com/google/uuid"
)

type staticProvider map[string]string

func (p staticProvider) FindConfig(ctx context.Context, s *ConfigSource) (*core.Config, error) {
	return core.ParseConfig([]byte(p[s.Name]))
}

func TestProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := staticProvider{
		"appetite": `
initial: hungry
states:
  hungry: {transitions: {eat: full}}
  full: {transitions: {rest: sleeping}}
  sleeping: {}
`,
	}

	c := NewCrew("test")

	tests := []struct {
		op   string
		want string
	}{
		{`{"op":"make","id":"m","config":{"name":"appetite"},"tag":"1"}`,
			`{"op":"make","id":"m","tag":"1","state":"hungry"}`},
		{`{"op":"make","id":"m","config":{"name":"appetite"}}`,
			`{"op":"make","id":"m","error":"machine \"m\": exists"}`},
		{`{"op":"trigger","id":"m","event":"eat"}`,
			`{"op":"trigger","id":"m","state":"full","previous":"hungry"}`},
		{`{"op":"trigger","id":"m","event":"rest"}`,
			`{"op":"trigger","id":"m","state":"sleeping","previous":"full"}`},
		{`{"op":"history","id":"m"}`,
			`{"op":"history","id":"m","state":"sleeping","previous":"full","undo":["hungry","full"],"redo":["full","sleeping"]}`},
		{`{"op":"undo","id":"m"}`,
			`{"op":"undo","id":"m","state":"full","previous":"hungry","ok":true}`},
		{`{"op":"undo","id":"m"}`,
			`{"op":"undo","id":"m","state":"hungry","ok":true}`},
		{`{"op":"undo","id":"m"}`,
			`{"op":"undo","id":"m","state":"hungry","ok":false}`},
		{`{"op":"redo","id":"m"}`,
			`{"op":"redo","id":"m","state":"full","ok":true}`},
		{`{"op":"states","id":"m","event":"eat"}`,
			`{"op":"states","id":"m","state":"full","states":["hungry"]}`},
		{`{"op":"states","id":"m"}`,
			`{"op":"states","id":"m","state":"full","states":["hungry","full","sleeping"]}`},
		{`{"op":"change","id":"m","state":"unknown"}`,
			`{"op":"change","id":"m","state":"full","previous":"full","error":"state \"unknown\" doesn't exist"}`},
		{`{"op":"trigger","id":"m","event":"fly"}`,
			`{"op":"trigger","id":"m","state":"full","previous":"full","error":"event \"fly\" doesn't exist in current state \"full\""}`},
		{`{"op":"reset","id":"m"}`,
			`{"op":"reset","id":"m","state":"hungry","previous":"full"}`},
		{`{"op":"clear","id":"m"}`,
			`{"op":"clear","id":"m","state":"hungry","previous":"full"}`},
		{`{"op":"undo","id":"m"}`,
			`{"op":"undo","id":"m","state":"hungry","previous":"full","ok":false}`},
		{`{"op":"list"}`,
			`{"op":"list","ids":["m"]}`},
		{`{"op":"dance","id":"m"}`,
			`{"op":"dance","id":"m","error":"unknown op \"dance\""}`},
		{`{"op":"rem","id":"m"}`,
			`{"op":"rem","id":"m"}`},
		{`{"op":"state","id":"m"}`,
			`{"op":"state","id":"m","error":"machine \"m\": not found"}`},
	}

	for i, tc := range tests {
		var op Op
		if err := json.Unmarshal([]byte(tc.op), &op); err != nil {
			t.Fatalf("%d: %v", i, err)
		}
		got := c.Process(ctx, &op, p)
		if !reflect.DeepEqual(Dwimjs(JS(got)), Dwimjs(tc.want)) {
			t.Fatalf("%d: %s\n got  %s\n want %s", i, tc.op, JS(got), tc.want)
		}
	}
}

func TestProcessInline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCrew("test")
	var op Op
	js := `{"op":"make","id":"i","config":{"inline":{"initial":"b","states":{"b":{"transitions":{"go":"a"}},"a":{}}}}}`
	if err := json.Unmarshal([]byte(js), &op); err != nil {
		t.Fatal(err)
	}
	if r := c.Process(ctx, &op, nil); r.Error != "" {
		t.Fatal(r.Error)
	}
	r := c.Process(ctx, &Op{Op: OpStates, Id: "i"}, nil)
	if !reflect.DeepEqual(r.States, []string{"b", "a"}) {
		t.Fatal(JS(r))
	}
}

func TestProcessMakeId(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCrew("test")
	p := staticProvider{
		"light": "initial: dark\nstates:\n  dark: {}\n",
	}

	r := c.Process(ctx, &Op{Op: OpMake, Config: NewConfigSource("light")}, p)
	if r.Error != "" {
		t.Fatal(r.Error)
	}
	if _, err := uuid.Parse(r.Id); err != nil {
		t.Fatal(err)
	}
	if r.State != "dark" {
		t.Fatal(JS(r))
	}
	if ids := c.Ids(); len(ids) != 1 || ids[0] != r.Id {
		t.Fatal(ids)
	}
}

func TestProcessMakeFailedId(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCrew("test")
	p := staticProvider{
		"broken": "initial: a\nbogus: 1\n",
	}

	r := c.Process(ctx, &Op{Op: OpMake, Config: NewConfigSource("broken")}, p)
	if r.Error == "" {
		t.Fatal("expected an error")
	}
	if r.Id != "" {
		t.Fatalf("id %q for a machine that wasn't made", r.Id)
	}
	if ids := c.Ids(); len(ids) != 0 {
		t.Fatal(ids)
	}
}
