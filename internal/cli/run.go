package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/impl"
	"github.com/roach88/conform/internal/store"
	"github.com/roach88/conform/internal/suite"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ModuleOptions
	Database string

	// IDs overrides the run ID generator of the history store (for testing).
	// If nil, the store uses UUIDv7.
	IDs store.IDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <module>",
		Short: "Run a test module",
		Long: `Run a registered test module and print a unittest-style report.

When <module> is an adapter, the alternative implementation runs exactly
the tests its verdict list names, in list order. The reference
implementation runs the upstream module unchanged.

Exit codes:
  0 - All tests passed (expected failures count as passes)
  1 - Failures, errors or unexpected successes
  2 - Command error (unknown module, bad verdict list, etc.)

Examples:
  conform run test_codecs_stdlib
  conform run test_codecs_stdlib --impl reference
  conform run test_codecs --verdicts ./codecs.yaml --pattern "test_lookup_*"
  conform run test_fileio_stdlib --db ./history.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withImpl(func() error {
				return runModule(opts, args[0], cmd)
			})
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite history database")

	return cmd
}

func runModule(opts *RunOptions, name string, cmd *cobra.Command) error {
	logger := opts.logger(cmd.ErrOrStderr())
	f := opts.formatter(cmd)
	p := suite.NewProgram(logger)

	s, err := loadSuite(p, name, &opts.ModuleOptions)
	if err != nil {
		return loadError(f, name, err)
	}
	if err := s.CheckUnique(); err != nil {
		return WrapExitError(ExitCommandError, "invalid suite", err)
	}

	logger.Info("running module", "module", name, "implementation", impl.Identity(), "tests", s.Len())
	result := p.Runner.Run(s)
	rep := result.Report(name, impl.Identity())

	if opts.Database != "" {
		if err := recordRun(opts, rep, cmd); err != nil {
			return err
		}
	}

	if opts.Format == "json" {
		canonical, err := rep.CanonicalJSON()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render report", err)
		}
		if err := f.Success(json.RawMessage(canonical)); err != nil {
			return err
		}
	} else if err := result.WriteText(cmd.OutOrStdout()); err != nil {
		return err
	}

	if !result.WasSuccessful() {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

func recordRun(opts *RunOptions, rep suite.Report, cmd *cobra.Command) error {
	var storeOpts []store.Option
	if opts.IDs != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
	}
	st, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.RecordRun(cmd.Context(), rep, opts.Pattern)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	opts.formatter(cmd).VerboseLog("recorded run %s (seq %d) in %s", run.ID, run.Seq, opts.Database)
	return nil
}
