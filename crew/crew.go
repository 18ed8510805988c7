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

// Package crew manages a set of named machines that several
// goroutines can share.
//
// A core.Machine does no locking.  Here each Machine has its own
// lock, and all access goes through Crew.Do (or Machine.Do).
package crew

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Comcast/fsm/core"
)

var (
	NotFound = errors.New("not found")
	Exists   = errors.New("exists")
)

// Crew is a set of Machines indexed by id.
type Crew struct {
	sync.RWMutex

	Id       string              `json:"id"`
	Machines map[string]*Machine `json:"machines"`

	// Observer, if not nil, is told about every Stride of every
	// Machine made by Make.  It's called while that Machine's
	// lock is held, so it shouldn't block.
	Observer func(mid string, s *core.Stride) `json:"-"`
}

// NewCrew makes an empty Crew.
func NewCrew(id string) *Crew {
	return &Crew{
		Id:       id,
		Machines: make(map[string]*Machine, 32),
	}
}

// Make finds the configuration for the given source, makes a new
// Machine, and adds it to the crew.
func (c *Crew) Make(ctx context.Context, mid string, src *ConfigSource, p ConfigProvider) (*Machine, error) {
	if src == nil {
		return nil, &core.InvalidArgument{Arg: "config source"}
	}

	var (
		cfg = src.Inline
		err error
	)
	if cfg == nil {
		if p == nil {
			return nil, fmt.Errorf("no provider for config %q", src.Name)
		}
		if cfg, err = p.FindConfig(ctx, src); err != nil {
			return nil, err
		}
	}

	cm, err := core.NewMachine(cfg)
	if err != nil {
		return nil, err
	}

	if c.Observer != nil {
		o := c.Observer
		cm.Observe(func(s *core.Stride) {
			o(mid, s)
		})
	}

	m := NewMachine(mid, src.Copy(), cm)
	if err = c.Add(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Add adds the given Machine.  Returns Exists if the crew already
// has a Machine with that id.
func (c *Crew) Add(m *Machine) error {
	c.Lock()
	defer c.Unlock()
	if _, have := c.Machines[m.Id]; have {
		return fmt.Errorf("machine %q: %w", m.Id, Exists)
	}
	c.Machines[m.Id] = m
	return nil
}

// Get returns the Machine with the given id.
func (c *Crew) Get(mid string) (*Machine, error) {
	c.RLock()
	m, have := c.Machines[mid]
	c.RUnlock()
	if !have {
		return nil, fmt.Errorf("machine %q: %w", mid, NotFound)
	}
	return m, nil
}

// Rem removes the Machine with the given id.
func (c *Crew) Rem(mid string) error {
	c.Lock()
	defer c.Unlock()
	if _, have := c.Machines[mid]; !have {
		return fmt.Errorf("machine %q: %w", mid, NotFound)
	}
	delete(c.Machines, mid)
	return nil
}

// Ids returns the sorted ids of the crew's Machines.
func (c *Crew) Ids() []string {
	c.RLock()
	acc := make([]string, 0, len(c.Machines))
	for mid := range c.Machines {
		acc = append(acc, mid)
	}
	c.RUnlock()
	sort.Strings(acc)
	return acc
}

// Do calls the given function with the identified core.Machine while
// holding that Machine's lock.
func (c *Crew) Do(mid string, f func(*core.Machine) error) error {
	m, err := c.Get(mid)
	if err != nil {
		return err
	}
	return m.Do(f)
}
