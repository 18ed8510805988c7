package crew

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Comcast/fsm/core"
	"github.com/Comcast/fsm/util"
)

// DirProvider is a ConfigProvider that serves the YAML files in a
// directory.  A file "appetite.yaml" provides the config named
// "appetite".
//
// Call ReadConfigs to (re)load.
type DirProvider struct {
	sync.RWMutex

	Dir string

	configs map[string]*core.Config
}

func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{
		Dir:     dir,
		configs: make(map[string]*core.Config, 32),
	}
}

// ReadConfigs will attempt to gather up configs based on YAML files
// in the directory.  If any file fails to parse, nothing changes.
func (p *DirProvider) ReadConfigs(ctx context.Context) error {
	util.Logf("ReadConfigs %s", p.Dir)

	files, err := ioutil.ReadDir(p.Dir)
	if err != nil {
		return err
	}

	configs := make(map[string]*core.Config, len(files))

	for _, fi := range files {
		name := fi.Name()
		if fi.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		c, err := core.ReadConfig(filepath.Join(p.Dir, name))
		if err != nil {
			return err
		}

		// Strip .yaml to get the config name.
		name = strings.TrimSuffix(name, ".yaml")
		if c.Name == "" {
			c.Name = name
		}
		configs[name] = c
	}

	util.Logf("Loaded %d configs from %s", len(configs), p.Dir)

	p.Lock()
	p.configs = configs
	p.Unlock()

	return nil
}

// Names returns the sorted names of the loaded configs.
func (p *DirProvider) Names() []string {
	p.RLock()
	acc := make([]string, 0, len(p.configs))
	for name := range p.configs {
		acc = append(acc, name)
	}
	p.RUnlock()
	sort.Strings(acc)
	return acc
}

// FindConfig returns a copy of the named config.
func (p *DirProvider) FindConfig(ctx context.Context, s *ConfigSource) (*core.Config, error) {
	if s.Inline != nil {
		return s.Inline, nil
	}

	p.RLock()
	c, have := p.configs[s.Name]
	p.RUnlock()

	if !have {
		return nil, fmt.Errorf("config %q: %w", s.Name, NotFound)
	}
	return c.Copy(), nil
}

// Providers tries each ConfigProvider in turn.  The first one that
// doesn't return an error wins.
type Providers []ConfigProvider

func (ps Providers) FindConfig(ctx context.Context, s *ConfigSource) (*core.Config, error) {
	if s.Inline != nil {
		return s.Inline, nil
	}
	var err error
	for _, p := range ps {
		var c *core.Config
		if c, err = p.FindConfig(ctx, s); err == nil {
			return c, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("config %q: %w", s.Name, NotFound)
	}
	return nil, err
}
