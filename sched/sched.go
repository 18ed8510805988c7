// Package sched fires machine events on cron schedules.
//
// A Schedule names a machine, an event, and a cron expression (see
// github.com/gorhill/cronexpr, which accepts an optional seconds
// field).  A Scheduler computes the next firing of every Schedule and
// waits, with one time.Timer, for the soonest.  When a Schedule is
// due, the Scheduler calls its Fire function.
//
// Schedules don't know anything about machines.  The Fire function
// (usually a crew.Crew.Do wrapper) does the work.
package sched

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"sort"
	"sync"
	"time"

	"github.com/Comcast/fsm/util"

	"github.com/gorhill/cronexpr"
	"github.com/jsccast/yaml"
)

var (
	NotFound = errors.New("not found")
	IdExists = errors.New("id exists")
)

// Schedule says to fire Event at Machine whenever Cron says so.
type Schedule struct {
	Id      string `json:"id"`
	Cron    string `json:"cron"`
	Machine string `json:"machine"`
	Event   string `json:"event"`

	expr *cronexpr.Expression
}

// Fire does what a due Schedule asks.
type Fire func(ctx context.Context, s *Schedule) error

// Scheduler is a set of Schedules.
type Scheduler struct {
	// Now is the clock.  Defaults to time.Now.
	Now func() time.Time

	fire Fire

	sync.Mutex
	schedules map[string]*Schedule
	changed   chan bool
}

func NewScheduler(fire Fire) *Scheduler {
	return &Scheduler{
		Now:       time.Now,
		fire:      fire,
		schedules: make(map[string]*Schedule),
		changed:   make(chan bool, 1),
	}
}

// ReadSchedules parses a YAML list of Schedules.
func ReadSchedules(filename string) ([]*Schedule, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var ss []*Schedule
	if err = yaml.Unmarshal(bs, &ss); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ss, nil
}

// Add parses the Schedule's cron expression and adds the Schedule.
func (sc *Scheduler) Add(s *Schedule) error {
	expr, err := cronexpr.Parse(s.Cron)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.Id, err)
	}
	sc.Lock()
	_, have := sc.schedules[s.Id]
	if !have {
		s.expr = expr
		sc.schedules[s.Id] = s
	}
	sc.Unlock()

	if have {
		return fmt.Errorf("schedule %q: %w", s.Id, IdExists)
	}
	sc.poke()
	return nil
}

// Rem removes the Schedule with the given id.
func (sc *Scheduler) Rem(id string) error {
	sc.Lock()
	_, have := sc.schedules[id]
	delete(sc.schedules, id)
	sc.Unlock()

	if !have {
		return fmt.Errorf("schedule %q: %w", id, NotFound)
	}
	sc.poke()
	return nil
}

// Ids returns the sorted ids of the Schedules.
func (sc *Scheduler) Ids() []string {
	sc.Lock()
	acc := make([]string, 0, len(sc.schedules))
	for id := range sc.schedules {
		acc = append(acc, id)
	}
	sc.Unlock()
	sort.Strings(acc)
	return acc
}

// Next returns the Schedules that are due soonest (after the given
// time) and when that is.  Returns no Schedules if none will ever be
// due.
func (sc *Scheduler) Next(after time.Time) ([]*Schedule, time.Time) {
	sc.Lock()
	defer sc.Unlock()

	var (
		soonest time.Time
		due     []*Schedule
	)
	for _, s := range sc.schedules {
		at := s.expr.Next(after)
		if at.IsZero() {
			continue
		}
		switch {
		case len(due) == 0 || at.Before(soonest):
			soonest = at
			due = []*Schedule{s}
		case at.Equal(soonest):
			due = append(due, s)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].Id < due[j].Id
	})
	return due, soonest
}

// poke wakes up Run so it can reconsider what's next.
func (sc *Scheduler) poke() {
	select {
	case sc.changed <- true:
	default:
	}
}

// Run fires Schedules as they come due until the context is done.
//
// Fire errors are logged, not returned.
func (sc *Scheduler) Run(ctx context.Context) error {
	for {
		now := sc.Now()
		due, at := sc.Next(now)

		var (
			timer *time.Timer
			wake  <-chan time.Time
		)
		if 0 < len(due) {
			timer = time.NewTimer(at.Sub(now))
			wake = timer.C
		}
		stop := func() {
			if timer != nil {
				timer.Stop()
			}
		}

		select {
		case <-ctx.Done():
			stop()
			return nil
		case <-sc.changed:
			stop()
		case <-wake:
			for _, s := range due {
				util.Logf("sched firing %s (%s at %s)", s.Id, s.Event, s.Machine)
				if err := sc.fire(ctx, s); err != nil {
					util.Warnf("sched %s: %v", s.Id, err)
				}
			}
		}
	}
}
