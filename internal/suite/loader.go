package suite

import (
	"fmt"
	"path"
)

// Loader discovers tests in modules.
type Loader struct{}

// NewLoader returns the default loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Discover returns every test in mod matching pattern, classes and methods
// in name order. It ignores the module's LoadTests hook.
func (l *Loader) Discover(mod *Module, pattern string) (*Suite, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	s := NewSuite(mod.Name)
	for _, className := range mod.ClassNames() {
		class, _ := mod.Lookup(className)
		for _, method := range class.MethodNames() {
			if !Matches(pattern, className, method) {
				continue
			}
			c, err := NewCase(class, method)
			if err != nil {
				return nil, err
			}
			s.Add(c)
		}
	}
	return s, nil
}

// LoadModule returns the suite for mod. When the module defines LoadTests
// the hook receives the default discovery result and decides what to run.
func (l *Loader) LoadModule(mod *Module, pattern string) (*Suite, error) {
	standard, err := l.Discover(mod, pattern)
	if err != nil {
		return nil, err
	}
	if mod.LoadTests == nil {
		return standard, nil
	}
	s, err := mod.LoadTests(l, standard, pattern)
	if err != nil {
		return nil, fmt.Errorf("load_tests %s: %w", mod.Name, err)
	}
	return s, nil
}

// LoadTest returns the single test class.method of mod.
func (l *Loader) LoadTest(mod *Module, class, method string) (*Case, error) {
	c, ok := mod.Lookup(class)
	if !ok {
		return nil, fmt.Errorf("%s: no such test class %s", mod.Name, class)
	}
	return NewCase(c, method)
}

// Matches reports whether the test class.method is selected by pattern.
// The pattern is a shell glob tried against the method name and against
// "Class.Method"; an empty pattern selects everything.
func Matches(pattern, class, method string) bool {
	if pattern == "" {
		return true
	}
	if ok, _ := path.Match(pattern, method); ok {
		return true
	}
	ok, _ := path.Match(pattern, class+"."+method)
	return ok
}

// ValidatePattern reports a malformed pattern. Matches treats one as
// matching nothing, so callers that filter by hand check it first.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return nil
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return nil
}
