package compose

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/conform/internal/suite"
	"github.com/roach88/conform/internal/verdict"
)

// Adapter is a thin module that runs an upstream module through Compose
// with its verdict list.
type Adapter struct {
	// Name is the adapter module's own name, e.g. "test_itertools_stdlib".
	Name string
	// Upstream names the module the tests come from.
	Upstream string
	Verdicts verdict.List

	// Registry resolves Upstream. Nil means suite.DefaultRegistry.
	Registry *suite.Registry
}

// NewAdapter creates an adapter. The upstream module name defaults to the
// verdict list's module.
func NewAdapter(name string, verdicts verdict.List) *Adapter {
	return &Adapter{Name: name, Upstream: verdicts.Module, Verdicts: verdicts}
}

// LoadAdapter reads the verdict list at path and creates an adapter for it.
func LoadAdapter(name, path string) (*Adapter, error) {
	list, err := verdict.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewAdapter(name, list), nil
}

func (a *Adapter) registry() *suite.Registry {
	if a.Registry != nil {
		return a.Registry
	}
	return suite.DefaultRegistry
}

// UpstreamModule imports the upstream module. Import errors are returned
// unchanged.
func (a *Adapter) UpstreamModule() (*suite.Module, error) {
	return a.registry().Import(a.Upstream)
}

// LoadTests is the adapter's discovery hook. The standard suite is the
// adapter module's own (empty) discovery and is not used.
func (a *Adapter) LoadTests(loader *suite.Loader, standard *suite.Suite, pattern string) (*suite.Suite, error) {
	up, err := a.UpstreamModule()
	if err != nil {
		return nil, err
	}
	return Compose(loader, up, a.Verdicts, pattern)
}

// Module returns the adapter as a registrable module.
func (a *Adapter) Module() *suite.Module {
	m := suite.NewModule(a.Name)
	m.LoadTests = a.LoadTests
	return m
}

// WithVerdicts returns a copy of a using list.
func (a *Adapter) WithVerdicts(list verdict.List) *Adapter {
	cp := *a
	cp.Verdicts = list
	return &cp
}

var (
	adaptersMu sync.RWMutex
	adapters   = make(map[string]*Adapter)
)

// Register records a and registers its module in the adapter's registry so
// suite.Program can run it by name.
func Register(a *Adapter) error {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	if _, dup := adapters[a.Name]; dup {
		return fmt.Errorf("adapter %q already registered", a.Name)
	}
	if err := a.registry().Register(a.Module()); err != nil {
		return err
	}
	adapters[a.Name] = a
	return nil
}

// MustRegister is Register for package init functions.
func MustRegister(a *Adapter) {
	if err := Register(a); err != nil {
		panic(err)
	}
}

// Lookup returns the adapter registered as name.
func Lookup(name string) (*Adapter, bool) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// Adapters returns the registered adapter names in sorted order.
func Adapters() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
