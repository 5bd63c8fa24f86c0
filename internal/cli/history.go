package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Test     string
}

// HistoryResult holds the recorded runs of a module.
type HistoryResult struct {
	Module string      `json:"module"`
	Runs   []store.Run `json:"runs"`
}

// WriteText prints one line per run, oldest first.
func (r HistoryResult) WriteText(w io.Writer) error {
	if len(r.Runs) == 0 {
		_, err := fmt.Fprintf(w, "no runs recorded for %s\n", r.Module)
		return err
	}
	for _, run := range r.Runs {
		if _, err := fmt.Fprintln(w, runSummary(run)); err != nil {
			return err
		}
	}
	return nil
}

// TestHistoryResult holds the recorded outcomes of one test.
type TestHistoryResult struct {
	Module  string             `json:"module"`
	Test    string             `json:"test"`
	Records []store.TestRecord `json:"records"`
}

// WriteText prints one line per recorded outcome, oldest first.
func (r TestHistoryResult) WriteText(w io.Writer) error {
	if len(r.Records) == 0 {
		_, err := fmt.Fprintf(w, "no outcomes recorded for %s in %s\n", r.Test, r.Module)
		return err
	}
	for _, rec := range r.Records {
		if _, err := fmt.Fprintf(w, "%4d  %s  %-11s  %s\n",
			rec.Seq, rec.RunID, rec.Implementation, rec.Outcome.Status); err != nil {
			return err
		}
	}
	return nil
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <module>",
		Short: "Show recorded runs of a module",
		Long: `Show the runs recorded with "conform run --db", oldest first.

With --test, show how one test fared across those runs instead.

Examples:
  conform history test_codecs_stdlib --db ./history.db
  conform history test_codecs_stdlib --db ./history.db --test RoundTripTests.test_latin1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (required)")
	cmd.Flags().StringVar(&opts.Test, "test", "", "show the history of one test (Class.method)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showHistory(opts *HistoryOptions, module string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Test != "" {
		records, err := st.TestHistory(cmd.Context(), module, opts.Test)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read history", err)
		}
		return f.Success(TestHistoryResult{Module: module, Test: opts.Test, Records: records})
	}

	runs, err := st.Runs(cmd.Context(), module)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}
	return f.Success(HistoryResult{Module: module, Runs: runs})
}

// runSummary is one line of run history text output.
func runSummary(r store.Run) string {
	status := "OK"
	if !r.Success {
		status = "FAILED"
	}
	c := r.Counts
	return fmt.Sprintf("%4d  %s  %-11s  %-6s  run=%d failures=%d errors=%d skipped=%d",
		r.Seq, r.ID, r.Implementation, status, c.Run, c.Failures, c.Errors, c.Skipped)
}
