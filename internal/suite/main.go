package suite

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes returned by RunTest.
const (
	ExitOK     = 0
	ExitFailed = 1
)

// Program runs a registered module the way a test script does when it is
// the main program.
type Program struct {
	Registry *Registry
	Loader   *Loader
	Runner   *Runner
	Out      io.Writer
}

// NewProgram returns a program over DefaultRegistry writing to stdout.
func NewProgram(logger *slog.Logger) *Program {
	return &Program{
		Registry: DefaultRegistry,
		Loader:   NewLoader(),
		Runner:   NewRunner(logger),
		Out:      os.Stdout,
	}
}

// Load imports the named module and returns its suite. Adapter modules
// compose their suite through their LoadTests hook.
func (p *Program) Load(name, pattern string) (*Suite, error) {
	mod, err := p.Registry.Import(name)
	if err != nil {
		return nil, err
	}
	return p.Loader.LoadModule(mod, pattern)
}

// Run loads and runs the named module and returns the result.
func (p *Program) Run(name, pattern string) (*Result, error) {
	s, err := p.Load(name, pattern)
	if err != nil {
		return nil, err
	}
	if err := s.CheckUnique(); err != nil {
		return nil, err
	}
	return p.Runner.Run(s), nil
}

// RunTest runs the named module, writes the text report and returns the
// process exit code: ExitOK iff the run had no failures, errors or
// unexpected successes.
func (p *Program) RunTest(name, pattern string) (int, error) {
	result, err := p.Run(name, pattern)
	if err != nil {
		return ExitFailed, err
	}
	if p.Out != nil {
		if err := result.WriteText(p.Out); err != nil {
			return ExitFailed, fmt.Errorf("write report: %w", err)
		}
	}
	return ExitCode(result), nil
}

// ExitCode maps a result to a process exit code.
func ExitCode(r *Result) int {
	if r.WasSuccessful() {
		return ExitOK
	}
	return ExitFailed
}

// RunTest runs name from DefaultRegistry with default settings.
func RunTest(name string) int {
	code, err := NewProgram(nil).RunTest(name, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}
