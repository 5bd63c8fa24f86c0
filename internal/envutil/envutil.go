// Package envutil looks up environment variables whose names may have been
// case-folded by the host environment.
package envutil

import (
	"os"
	"strings"

	"golang.org/x/text/cases"
)

// Lookup returns the value of the first environment variable whose name
// matches name under Unicode case folding. The second result is false when
// no variable matches.
func Lookup(name string) (string, bool) {
	return LookupIn(os.Environ(), name)
}

// LookupIn is Lookup over an explicit "KEY=value" list, in list order.
func LookupIn(environ []string, name string) (string, bool) {
	folder := cases.Fold()
	want := folder.String(name)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if folder.String(key) == want {
			return value, true
		}
	}
	return "", false
}

// Get is Lookup with a fallback for absent variables.
func Get(name, fallback string) string {
	if v, ok := Lookup(name); ok {
		return v
	}
	return fallback
}
