/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package crew

import (
	"context"
	"sync"

	"github.com/Comcast/fsm/core"
)

// Machine is a core.Machine with an id, a note about where its
// configuration came from, and a lock.
//
// The core.Machine is only reachable via Do, which holds the lock.
type Machine struct {
	Id string `json:"id,omitempty"`

	// Source is here to tell people what the machine is.  This
	// package doesn't use it after the machine is made.
	Source *ConfigSource `json:"config,omitempty"`

	mu      sync.Mutex
	machine *core.Machine
}

// NewMachine wraps the given core.Machine.
func NewMachine(id string, src *ConfigSource, m *core.Machine) *Machine {
	return &Machine{
		Id:      id,
		Source:  src,
		machine: m,
	}
}

// Do calls the given function with the core.Machine while holding
// this Machine's lock.
func (m *Machine) Do(f func(*core.Machine) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return f(m.machine)
}

// ConfigSource aspires to hold the origin of a configuration.
//
// Currently a source is either a name, which a ConfigProvider
// resolves, or an inline core.Config.
type ConfigSource struct {
	// Name is an optional string that a ConfigProvider can use to
	// find a core.Config.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Inline is an optional actual configuration right here.
	Inline *core.Config `json:"inline,omitempty" yaml:"inline,omitempty"`
}

// NewConfigSource creates a ConfigSource with the given name.
func NewConfigSource(name string) *ConfigSource {
	return &ConfigSource{
		Name: name,
	}
}

// Copy makes a copy of the given ConfigSource.
func (s *ConfigSource) Copy() *ConfigSource {
	if s == nil {
		return nil
	}
	acc := &ConfigSource{
		Name: s.Name,
	}
	if s.Inline != nil {
		acc.Inline = s.Inline.Copy()
	}
	return acc
}

// ConfigProvider can FindConfig given a ConfigSource.
type ConfigProvider interface {
	FindConfig(ctx context.Context, s *ConfigSource) (*core.Config, error)
}
