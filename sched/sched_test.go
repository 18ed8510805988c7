package sched

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	. "github.com/Comcast/fsm/util/testutil"
)

func TestNext(t *testing.T) {
	sc := NewScheduler(nil)
	for _, s := range []*Schedule{
		{Id: "hourly", Cron: "0 * * * *", Machine: "m", Event: "tick"},
		{Id: "noon", Cron: "0 12 * * *", Machine: "m", Event: "lunch"},
		{Id: "top", Cron: "0 * * * *", Machine: "n", Event: "tick"},
	} {
		if err := sc.Add(s); err != nil {
			t.Fatal(err)
		}
	}

	after := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	due, at := sc.Next(after)
	if !at.Equal(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)) {
		t.Fatal(at)
	}
	var ids []string
	for _, s := range due {
		ids = append(ids, s.Id)
	}
	if !reflect.DeepEqual(ids, []string{"hourly", "top"}) {
		t.Fatal(ids)
	}

	if err := sc.Rem("hourly"); err != nil {
		t.Fatal(err)
	}
	if err := sc.Rem("top"); err != nil {
		t.Fatal(err)
	}
	due, at = sc.Next(after)
	if len(due) != 1 || due[0].Id != "noon" {
		t.Fatal(JS(due))
	}
	if !at.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatal(at)
	}
}

func TestAddRem(t *testing.T) {
	sc := NewScheduler(nil)
	if err := sc.Add(&Schedule{Id: "x", Cron: "not cron"}); err == nil {
		t.Fatal("expected a parse error")
	}
	if err := sc.Add(&Schedule{Id: "x", Cron: "@daily"}); err != nil {
		t.Fatal(err)
	}
	dup := &Schedule{Id: "x", Cron: "@hourly"}
	if err := sc.Add(dup); !errors.Is(err, IdExists) {
		t.Fatalf("expected IdExists, got %v", err)
	}
	if dup.expr != nil {
		t.Fatal("rejected schedule was modified")
	}
	if err := sc.Rem("y"); !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if ids := sc.Ids(); !reflect.DeepEqual(ids, []string{"x"}) {
		t.Fatal(ids)
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		fired []string
		done  = make(chan bool, 1)
	)
	sc := NewScheduler(func(ctx context.Context, s *Schedule) error {
		mu.Lock()
		fired = append(fired, s.Event)
		n := len(fired)
		mu.Unlock()
		if n == 2 {
			done <- true
		}
		return nil
	})

	go sc.Run(ctx)

	// Every second (seconds field first).
	if err := sc.Add(&Schedule{Id: "s", Cron: "* * * * * * *", Machine: "m", Event: "tick"}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}

	mu.Lock()
	defer mu.Unlock()
	if fired[0] != "tick" || fired[1] != "tick" {
		t.Fatal(fired)
	}
}

func TestReadSchedules(t *testing.T) {
	filename := WriteFile(t, "", "schedules.yaml", `
- id: nightly
  cron: "@midnight"
  machine: light
  event: reset
- id: hourly
  cron: "0 * * * *"
  machine: light
  event: flip
`)
	ss, err := ReadSchedules(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(ss) != 2 || ss[0].Id != "nightly" || ss[1].Event != "flip" {
		t.Fatal(JS(ss))
	}
	sc := NewScheduler(nil)
	for _, s := range ss {
		if err = sc.Add(s); err != nil {
			t.Fatal(err)
		}
	}
}
