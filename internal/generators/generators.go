// Package generators holds the code-generation phases conform ships.
package generators

import (
	"fmt"
	"path/filepath"

	"github.com/roach88/conform/internal/gen"
)

// Phases returns every phase, writing into outDir.
func Phases(outDir string) []gen.Phase {
	return []gen.Phase{
		{Name: "errno", Target: filepath.Join(outDir, "Errno.Generated.cs"), Write: WriteErrno},
		{Name: "aliases", Target: filepath.Join(outDir, "Encodings.Generated.cs"), Write: WriteAliases},
		{Name: "radix", Target: filepath.Join(outDir, "Radix.Generated.cs"), Write: WriteRadix},
	}
}

// Select returns the phases named in names, in the order given. No names
// selects all of them.
func Select(phases []gen.Phase, names []string) ([]gen.Phase, error) {
	if len(names) == 0 {
		return phases, nil
	}
	byName := make(map[string]gen.Phase, len(phases))
	for _, p := range phases {
		byName[p.Name] = p
	}
	out := make([]gen.Phase, 0, len(names))
	for _, n := range names {
		p, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown phase %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}
