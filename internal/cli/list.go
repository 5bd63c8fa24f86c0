package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/impl"
	"github.com/roach88/conform/internal/suite"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	ModuleOptions
}

// ListResult is the composed suite of a module, without running it.
type ListResult struct {
	Module         string           `json:"module"`
	Implementation string           `json:"implementation"`
	Tests          []string         `json:"tests"`
	Excluded       []suite.Excluded `json:"excluded,omitempty"`
}

// WriteText prints one test ID per line, then the exclusions.
func (r ListResult) WriteText(w io.Writer) error {
	for _, id := range r.Tests {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	for _, ex := range r.Excluded {
		if _, err := fmt.Fprintf(w, "%s (skipped: %s)\n", ex.ID, ex.Reason); err != nil {
			return err
		}
	}
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <module>",
		Short: "List the tests a module would run",
		Long: `Compose a module's suite without running it and print the test IDs
in run order. Tests skipped by the verdict list are shown after the others.

Examples:
  conform list test_codecs_stdlib
  conform list test_codecs_stdlib --impl reference --pattern "test_lookup_*"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withImpl(func() error {
				return listModule(opts, args[0], cmd)
			})
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func listModule(opts *ListOptions, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	p := suite.NewProgram(opts.logger(cmd.ErrOrStderr()))

	s, err := loadSuite(p, name, &opts.ModuleOptions)
	if err != nil {
		return loadError(f, name, err)
	}

	return f.Success(ListResult{
		Module:         name,
		Implementation: impl.Identity(),
		Tests:          s.IDs(),
		Excluded:       s.AllExcluded(),
	})
}
