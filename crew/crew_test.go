package crew

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/Comcast/fsm/core"
	. "github.com/Comcast/fsm/util/testutil"
)

var toggleYAML = `
initial: dark
states:
  dark:
    transitions: {flip: lit}
  lit:
    transitions: {flip: dark}
`

func toggle(t *testing.T) *core.Config {
	c, err := core.ParseConfig([]byte(toggleYAML))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCrewBasics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCrew("test")
	if _, err := c.Make(ctx, "a", &ConfigSource{Inline: toggle(t)}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Make(ctx, "a", &ConfigSource{Inline: toggle(t)}, nil); !errors.Is(err, Exists) {
		t.Fatalf("expected Exists, got %v", err)
	}
	if _, err := c.Make(ctx, "b", NewConfigSource("toggle"), nil); err == nil {
		t.Fatal("expected an error without a provider")
	}
	if _, err := c.Make(ctx, "b", nil, nil); err == nil {
		t.Fatal("expected an error without a source")
	}

	if got := c.Ids(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatal(got)
	}

	err := c.Do("a", func(m *core.Machine) error {
		return m.Trigger("flip")
	})
	if err != nil {
		t.Fatal(err)
	}

	if err = c.Do("zzz", func(m *core.Machine) error { return nil }); !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	if err = c.Rem("a"); err != nil {
		t.Fatal(err)
	}
	if err = c.Rem("a"); !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

// TestCrewConcurrent has many goroutines flip the same machine.  Run
// with -race.
func TestCrewConcurrent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCrew("test")
	if _, err := c.Make(ctx, "light", &ConfigSource{Inline: toggle(t)}, nil); err != nil {
		t.Fatal(err)
	}

	var (
		wg         sync.WaitGroup
		goroutines = 8
		flips      = 100
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < flips; j++ {
				err := c.Do("light", func(m *core.Machine) error {
					return m.Trigger("flip")
				})
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	c.Do("light", func(m *core.Machine) error {
		// An even number of flips.
		if m.State() != "dark" {
			t.Fatal(m.State())
		}
		u, r := m.History()
		if len(u) != goroutines*flips || len(r) != len(u) {
			t.Fatalf("%d %d", len(u), len(r))
		}
		return nil
	})
}

func TestCrewObserver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []string
	c := NewCrew("test")
	c.Observer = func(mid string, s *core.Stride) {
		got = append(got, mid+":"+s.From+">"+s.To)
	}
	if _, err := c.Make(ctx, "x", &ConfigSource{Inline: toggle(t)}, nil); err != nil {
		t.Fatal(err)
	}
	c.Do("x", func(m *core.Machine) error {
		m.Trigger("flip")
		m.Undo()
		return nil
	})
	if want := []string{"x:dark>lit", "x:lit>dark"}; !reflect.DeepEqual(got, want) {
		t.Fatal(JS(got))
	}
}
