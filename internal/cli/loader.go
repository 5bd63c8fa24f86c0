package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/compose"
	"github.com/roach88/conform/internal/impl"
	"github.com/roach88/conform/internal/suite"
	"github.com/roach88/conform/internal/verdict"
)

// ModuleOptions holds the flags shared by commands that load a module.
type ModuleOptions struct {
	Pattern  string // test name pattern (path.Match syntax)
	Verdicts string // verdict file overriding the adapter's bundled list
	Impl     string // implementation identity override
}

func (m *ModuleOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&m.Pattern, "pattern", "p", "", "only tests whose method or Class.method matches")
	cmd.Flags().StringVar(&m.Verdicts, "verdicts", "", "verdict list file (.yaml or .cue)")
	cmd.Flags().StringVar(&m.Impl, "impl", "", "implementation identity (reference|alternative)")
}

// withImpl runs fn with the --impl override in place.
func (m *ModuleOptions) withImpl(fn func() error) error {
	if m.Impl != "" {
		restore := impl.Override(m.Impl)
		defer restore()
	}
	return fn()
}

// loadSuite returns the suite for the named module. Without --verdicts
// the module is imported and loaded as registered, adapters included.
// With --verdicts the named adapter (or a new adapter over the named
// upstream module) runs under the given list.
func loadSuite(p *suite.Program, name string, m *ModuleOptions) (*suite.Suite, error) {
	if m.Verdicts == "" {
		return p.Load(name, m.Pattern)
	}
	a, err := adapterFor(name, m.Verdicts)
	if err != nil {
		return nil, err
	}
	return p.Loader.LoadModule(a.Module(), m.Pattern)
}

// adapterFor resolves name to an adapter. A registered adapter keeps its
// upstream module; verdictsPath, when set, replaces its list. Any other
// name is taken as an upstream module and requires verdictsPath.
func adapterFor(name, verdictsPath string) (*compose.Adapter, error) {
	var list verdict.List
	if verdictsPath != "" {
		var err error
		if list, err = verdict.LoadFile(verdictsPath); err != nil {
			return nil, err
		}
	}

	if a, ok := compose.Lookup(name); ok {
		if verdictsPath == "" {
			return a, nil
		}
		return a.WithVerdicts(list), nil
	}
	if verdictsPath == "" {
		return nil, fmt.Errorf("%s is not an adapter: pass --verdicts", name)
	}
	a := compose.NewAdapter(name, list)
	a.Upstream = name
	return a, nil
}

// loadError reports a module or verdict failure. Verdict problems keep
// their E2xx codes in JSON output; anything else is E100.
func loadError(f *OutputFormatter, name string, err error) error {
	code := "E100"
	var details any
	if errs := verdict.ConfigErrors(err); len(errs) > 0 {
		code = errs[0].Code
		details = errs
	} else if errors.Is(err, suite.ErrModuleNotFound) {
		code = "E101"
	}

	if f.Format == "json" {
		if ferr := f.Error(code, fmt.Sprintf("failed to load %s: %v", name, err), details); ferr != nil {
			return ferr
		}
		return &ExitError{Code: ExitCommandError}
	}
	return WrapExitError(ExitCommandError, "failed to load "+name, err)
}
