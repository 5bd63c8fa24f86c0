// Package corpus bundles upstream test modules and the adapters that run
// them under verdict lists. Importing it registers everything with
// suite.DefaultRegistry.
package corpus

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/roach88/conform/internal/compose"
	"github.com/roach88/conform/internal/suite"
	"github.com/roach88/conform/internal/verdict"
)

//go:embed verdicts
var verdictFS embed.FS

// Upstream returns fresh instances of the bundled upstream modules.
func Upstream() []*suite.Module {
	return []*suite.Module{Codecs(), FileIO()}
}

// Verdicts parses the bundled verdict list of the named adapter.
func Verdicts(adapter string) (verdict.List, error) {
	entries, err := fs.ReadDir(verdictFS, "verdicts")
	if err != nil {
		return verdict.List{}, err
	}
	for _, e := range entries {
		name := e.Name()
		if strings.TrimSuffix(name, path.Ext(name)) != adapter {
			continue
		}
		format, err := verdict.FormatOf(name)
		if err != nil {
			return verdict.List{}, err
		}
		data, err := verdictFS.ReadFile(path.Join("verdicts", name))
		if err != nil {
			return verdict.List{}, err
		}
		list, err := verdict.Parse(data, format, name)
		if err != nil {
			return verdict.List{}, fmt.Errorf("%s: %w", name, err)
		}
		return list, nil
	}
	return verdict.List{}, fmt.Errorf("no bundled verdicts for %s", adapter)
}

// AdapterNames lists the adapters with bundled verdicts, sorted.
func AdapterNames() []string {
	entries, _ := fs.ReadDir(verdictFS, "verdicts")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	return names
}

// Adapters builds the bundled adapters, resolving upstream modules in reg.
func Adapters(reg *suite.Registry) ([]*compose.Adapter, error) {
	var adapters []*compose.Adapter
	for _, name := range AdapterNames() {
		list, err := Verdicts(name)
		if err != nil {
			return nil, err
		}
		a := compose.NewAdapter(name, list)
		a.Registry = reg
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// NewRegistry returns a registry holding fresh upstream modules and their
// adapters, independent of suite.DefaultRegistry.
func NewRegistry() (*suite.Registry, error) {
	reg := suite.NewRegistry()
	for _, m := range Upstream() {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	adapters, err := Adapters(reg)
	if err != nil {
		return nil, err
	}
	for _, a := range adapters {
		if err := reg.Register(a.Module()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func init() {
	for _, m := range Upstream() {
		suite.Register(m)
	}
	adapters, err := Adapters(nil)
	if err != nil {
		panic(err)
	}
	for _, a := range adapters {
		compose.MustRegister(a)
	}
}
