// Package storage persists named machine configurations.
//
// Only configurations are stored.  A machine's current state and
// history are never written anywhere.
package storage

import (
	"context"
	"errors"

	"github.com/Comcast/fsm/core"
	"github.com/Comcast/fsm/crew"
)

var NotFound = errors.New("not found")

// Store is a persistence interface for named core.Configs.
type Store interface {
	Put(ctx context.Context, name string, c *core.Config) error

	// Get returns NotFound (possibly wrapped) if there's no
	// config with that name.
	Get(ctx context.Context, name string) (*core.Config, error)

	Rem(ctx context.Context, name string) error

	// List returns the sorted names of the stored configs.
	List(ctx context.Context) ([]string, error)
}

// Provider makes a Store into a crew.ConfigProvider.
type Provider struct {
	Store
}

func (p *Provider) FindConfig(ctx context.Context, s *crew.ConfigSource) (*core.Config, error) {
	if s.Inline != nil {
		return s.Inline, nil
	}
	return p.Get(ctx, s.Name)
}
