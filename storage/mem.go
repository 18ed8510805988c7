package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Comcast/fsm/core"
)

// MemStore is a Store that forgets everything when the process
// exits.
type MemStore struct {
	sync.RWMutex
	configs map[string]*core.Config
}

func NewMemStore() *MemStore {
	return &MemStore{
		configs: make(map[string]*core.Config),
	}
}

func (s *MemStore) Put(ctx context.Context, name string, c *core.Config) error {
	s.Lock()
	s.configs[name] = c.Copy()
	s.Unlock()
	return nil
}

func (s *MemStore) Get(ctx context.Context, name string) (*core.Config, error) {
	s.RLock()
	c, have := s.configs[name]
	s.RUnlock()
	if !have {
		return nil, fmt.Errorf("config %q: %w", name, NotFound)
	}
	return c.Copy(), nil
}

func (s *MemStore) Rem(ctx context.Context, name string) error {
	s.Lock()
	defer s.Unlock()
	if _, have := s.configs[name]; !have {
		return fmt.Errorf("config %q: %w", name, NotFound)
	}
	delete(s.configs, name)
	return nil
}

func (s *MemStore) List(ctx context.Context) ([]string, error) {
	s.RLock()
	acc := make([]string, 0, len(s.configs))
	for name := range s.configs {
		acc = append(acc, name)
	}
	s.RUnlock()
	sort.Strings(acc)
	return acc, nil
}
