// Package impl identifies which language implementation the process is
// validating.
//
// The identity is read once and never changes for the lifetime of the
// process. Adapters consult IsAlt during discovery, so it has to be cheap
// and cannot fail: anything unreadable or unrecognised is the reference
// implementation.
//
// # Sources
//
// In order of precedence:
//
//   - the link-time variable linkedName, set with
//     -ldflags "-X github.com/roach88/conform/internal/impl.linkedName=alternative"
//   - the environment variable CONFORM_IMPLEMENTATION, matched without regard
//     to case because some hosts fold variable names
//
// Several spellings of the alternative implementation are in circulation;
// all of them normalise to Alternative.
package impl

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/roach88/conform/internal/envutil"
)

// Canonical identity names.
const (
	Reference   = "reference"
	Alternative = "alternative"
)

// EnvVar is the environment variable consulted when no identity was linked in.
const EnvVar = "CONFORM_IMPLEMENTATION"

// linkedName is set by the linker for builds of the alternative runtime.
var linkedName string

var aliases = map[string]string{
	"alternative": Alternative,
	"alt":         Alternative,
	"alt-impl":    Alternative,
	"alt_impl":    Alternative,
	"ironpython":  Alternative,
	"ipy":         Alternative,
	"reference":   Reference,
	"ref":         Reference,
	"cpython":     Reference,
}

var (
	once     sync.Once
	mu       sync.RWMutex
	identity string
)

// Identity returns the canonical name of the running implementation.
func Identity() string {
	once.Do(func() {
		id := Normalize(linkedName)
		if linkedName == "" {
			v, _ := envutil.Lookup(EnvVar)
			id = Normalize(v)
		}
		mu.Lock()
		identity = id
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return identity
}

// IsAlt reports whether the alternative implementation is running.
func IsAlt() bool {
	return Identity() == Alternative
}

// Normalize maps a raw identity string to a canonical name. Unknown and
// empty strings map to Reference.
func Normalize(raw string) string {
	key := cases.Fold().String(strings.TrimSpace(raw))
	if name, ok := aliases[key]; ok {
		return name
	}
	return Reference
}

// Override replaces the identity for the duration of a test or a CLI run
// and returns a func restoring the previous value.
func Override(name string) (restore func()) {
	Identity()
	mu.Lock()
	prev := identity
	identity = Normalize(name)
	mu.Unlock()
	return func() {
		mu.Lock()
		identity = prev
		mu.Unlock()
	}
}
