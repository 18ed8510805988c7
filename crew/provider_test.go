package crew

import (
	"context"
	"errors"
	"reflect"
	"testing"

	. "github.com/Comcast/fsm/util/testutil"
)

func TestDirProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	WriteFile(t, dir, "toggle.yaml", toggleYAML)
	WriteFile(t, dir, "README.md", "not a config")

	p := NewDirProvider(dir)
	if err := p.ReadConfigs(ctx); err != nil {
		t.Fatal(err)
	}
	if names := p.Names(); len(names) != 1 || names[0] != "toggle" {
		t.Fatal(names)
	}

	c, err := p.FindConfig(ctx, NewConfigSource("toggle"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "toggle" || c.Initial != "dark" {
		t.Fatal(JS(c))
	}

	// Callers get copies.
	c.Initial = "lit"
	if c, _ = p.FindConfig(ctx, NewConfigSource("toggle")); c.Initial != "dark" {
		t.Fatal(c.Initial)
	}

	if _, err = p.FindConfig(ctx, NewConfigSource("missing")); !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	// A bad file leaves what we had.
	WriteFile(t, dir, "bad.yaml", "initial: a\nbogus: true\n")
	if err = p.ReadConfigs(ctx); err == nil {
		t.Fatal("expected an error")
	}
	if _, err = p.FindConfig(ctx, NewConfigSource("toggle")); err != nil {
		t.Fatal(err)
	}
}

func TestProviders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	empty := NewDirProvider(t.TempDir())
	full := NewDirProvider(t.TempDir())
	WriteFile(t, full.Dir, "toggle.yaml", toggleYAML)
	for _, p := range []*DirProvider{empty, full} {
		if err := p.ReadConfigs(ctx); err != nil {
			t.Fatal(err)
		}
	}

	ps := Providers{empty, full}
	if _, err := ps.FindConfig(ctx, NewConfigSource("toggle")); err != nil {
		t.Fatal(err)
	}
	if _, err := ps.FindConfig(ctx, NewConfigSource("nope")); !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if _, err := (Providers{}).FindConfig(ctx, NewConfigSource("nope")); !errors.Is(err, NotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDirProviderNamesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zebra", "apple", "mango"} {
		WriteFile(t, dir, name+".yaml", toggleYAML)
	}

	p := NewDirProvider(dir)
	if err := p.ReadConfigs(context.Background()); err != nil {
		t.Fatal(err)
	}
	if names := p.Names(); !reflect.DeepEqual(names, []string{"apple", "mango", "zebra"}) {
		t.Fatal(names)
	}
}
