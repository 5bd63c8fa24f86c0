package suite

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// Method is the body of one test.
type Method func(t *T)

// Fixture provides per-test setup and teardown. A fresh fixture is built
// for every test, so state never leaks between tests.
type Fixture interface {
	SetUp(t *T) error
	TearDown(t *T) error
}

// LoadTestsFunc is the discovery hook a module may define. It receives the
// suite produced by default discovery and returns the suite to run.
type LoadTestsFunc func(loader *Loader, standard *Suite, pattern string) (*Suite, error)

// Class groups test methods that share a fixture.
type Class struct {
	Name    string
	Fixture func() Fixture

	// Source is the file that registered the class through Module.Class.
	// Fixtures resolve test data relative to it.
	Source string

	methods map[string]Method
}

// Add installs a test method. Registering the same name twice panics,
// as it can only be a programming error.
func (c *Class) Add(name string, m Method) *Class {
	if c.methods == nil {
		c.methods = make(map[string]Method)
	}
	if _, dup := c.methods[name]; dup {
		panic(fmt.Sprintf("suite: method %s.%s registered twice", c.Name, name))
	}
	c.methods[name] = m
	return c
}

// AddAll installs one method per name, each built by build from its own
// name.
func (c *Class) AddAll(names []string, build func(name string) Method) *Class {
	for _, name := range names {
		c.Add(name, build(name))
	}
	return c
}

// Parametrize installs base_<param> for every param, each calling fn with
// its own param.
func (c *Class) Parametrize(base string, params []string, fn func(t *T, param string)) *Class {
	for _, p := range params {
		p := p
		c.Add(base+"_"+p, func(t *T) { fn(t, p) })
	}
	return c
}

// Method returns the named method.
func (c *Class) Method(name string) (Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// MethodNames returns the method names in sorted order.
func (c *Class) MethodNames() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Module is an upstream test module: a named set of test classes.
type Module struct {
	Name string

	// Init runs once on first import. Its error is returned from every
	// Import of the module.
	Init func() error

	// LoadTests replaces default discovery when set.
	LoadTests LoadTestsFunc

	classes map[string]*Class
	once    sync.Once
	initErr error
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, classes: make(map[string]*Class)}
}

// Class returns the named class, creating it with fixture on first use and
// recording the caller's file as its Source.
func (m *Module) Class(name string, fixture func() Fixture) *Class {
	if m.classes == nil {
		m.classes = make(map[string]*Class)
	}
	if c, ok := m.classes[name]; ok {
		return c
	}
	c := &Class{Name: name, Fixture: fixture}
	if _, file, _, ok := runtime.Caller(1); ok {
		c.Source = file
	}
	m.classes[name] = c
	return c
}

// Lookup returns the named class.
func (m *Module) Lookup(name string) (*Class, bool) {
	c, ok := m.classes[name]
	return c, ok
}

// ClassNames returns the class names in sorted order.
func (m *Module) ClassNames() []string {
	names := make([]string, 0, len(m.classes))
	for name := range m.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Module) initialize() error {
	m.once.Do(func() {
		if m.Init != nil {
			m.initErr = m.Init()
		}
	})
	return m.initErr
}

// ErrModuleNotFound is returned by Import for unregistered names.
var ErrModuleNotFound = errors.New("module not found")

// Registry maps module names to modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Register adds m. Names must be unique.
func (r *Registry) Register(m *Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.modules[m.Name]; dup {
		return fmt.Errorf("module %q already registered", m.Name)
	}
	r.modules[m.Name] = m
	return nil
}

// Import returns the named module after running its Init. An Init error is
// returned as is so callers can match it.
func (r *Registry) Import(name string) (*Module, error) {
	r.mu.RLock()
	m, ok := r.modules[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("import %q: %w", name, ErrModuleNotFound)
	}
	if err := m.initialize(); err != nil {
		return nil, err
	}
	return m, nil
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the modules registered by package init functions.
var DefaultRegistry = NewRegistry()

// Register adds m to DefaultRegistry and panics on a duplicate name.
func Register(m *Module) {
	if err := DefaultRegistry.Register(m); err != nil {
		panic(err)
	}
}

// Import imports name from DefaultRegistry.
func Import(name string) (*Module, error) {
	return DefaultRegistry.Import(name)
}
