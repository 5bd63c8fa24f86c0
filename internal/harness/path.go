package harness

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/roach88/conform/internal/envutil"
)

// PathEnvVar seeds ModulePath at startup.
const PathEnvVar = "CONFORM_PATH"

// SearchPath is an ordered list of directories searched for modules and
// fixtures.
type SearchPath struct {
	mu      sync.Mutex
	entries []string
}

// NewSearchPath creates a path holding entries.
func NewSearchPath(entries ...string) *SearchPath {
	return &SearchPath{entries: append([]string(nil), entries...)}
}

// ModulePath is the process-wide module search path.
var ModulePath = NewSearchPath(splitList(envutil.Get(PathEnvVar, ""))...)

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Entries returns a copy of the current entries.
func (p *SearchPath) Entries() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.entries...)
}

// Set replaces the entries.
func (p *SearchPath) Set(entries []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append([]string(nil), entries...)
}

// Append adds dirs at the end.
func (p *SearchPath) Append(dirs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, dirs...)
}

// Prepend adds dirs at the front, keeping their order.
func (p *SearchPath) Prepend(dirs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(append([]string(nil), dirs...), p.entries...)
}

// Remove drops every occurrence of dir.
func (p *SearchPath) Remove(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e != dir {
			kept = append(kept, e)
		}
	}
	p.entries = kept
}

// Find returns the first entry holding name.
func (p *SearchPath) Find(name string) (string, bool) {
	for _, dir := range p.Entries() {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// Push appends dir and returns a release func. Release restores the entries
// exactly as they were before Push, whatever happened in between, and is
// safe to call more than once.
func (p *SearchPath) Push(dir string) (release func()) {
	saved := p.Entries()
	p.Append(dir)
	var once sync.Once
	return func() {
		once.Do(func() { p.Set(saved) })
	}
}

// With runs fn with dir appended to the path. The path is restored when fn
// returns or panics; a panic is then re-raised.
func (p *SearchPath) With(dir string, fn func()) {
	release := p.Push(dir)
	defer release()
	fn()
}
