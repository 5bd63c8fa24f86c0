package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/compose"
	"github.com/roach88/conform/internal/suite"
)

// TriageOptions holds flags for the triage command.
type TriageOptions struct {
	*RootOptions
	Verdicts string
}

// TriageResult lists upstream tests no verdict mentions.
type TriageResult struct {
	Adapter string   `json:"adapter"`
	Module  string   `json:"module"`
	Missing []string `json:"missing"`
}

// WriteText prints the untriaged test IDs, or a note that there are none.
func (r TriageResult) WriteText(w io.Writer) error {
	if len(r.Missing) == 0 {
		_, err := fmt.Fprintf(w, "%s: every test in %s has a verdict\n", r.Adapter, r.Module)
		return err
	}
	for _, id := range r.Missing {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d test(s) in %s without a verdict\n", len(r.Missing), r.Module)
	return err
}

// NewTriageCommand creates the triage command.
func NewTriageCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TriageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "triage <adapter>",
		Short: "List upstream tests missing from a verdict list",
		Long: `List the tests of an adapter's upstream module that its verdict list
does not mention. The alternative implementation never runs those tests,
so each one needs a verdict.

Exit codes:
  0 - Every upstream test has a verdict
  1 - Some tests are untriaged
  2 - Command error

Examples:
  conform triage test_codecs_stdlib
  conform triage test_codecs --verdicts ./codecs.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return triageAdapter(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Verdicts, "verdicts", "", "verdict list file (.yaml or .cue)")
	return cmd
}

func triageAdapter(opts *TriageOptions, name string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	a, err := adapterFor(name, opts.Verdicts)
	if err != nil {
		return loadError(f, name, err)
	}
	up, err := a.UpstreamModule()
	if err != nil {
		return loadError(f, a.Upstream, err)
	}
	missing, err := compose.Triage(suite.NewLoader(), up, a.Verdicts)
	if err != nil {
		return loadError(f, a.Upstream, err)
	}
	if missing == nil {
		missing = []string{}
	}

	if err := f.Success(TriageResult{Adapter: name, Module: up.Name, Missing: missing}); err != nil {
		return err
	}
	if len(missing) > 0 {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}
