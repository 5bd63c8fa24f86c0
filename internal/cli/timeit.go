package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/timing"
)

const timeitUsage = "usage: conform timeit <file> [loops]"

// NewTimeitCommand creates the timeit command.
func NewTimeitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeit <file> [loops]",
		Short: "Time repeated runs of a script",
		Long: `Execute <file> loops times (default 1) and print how long each run took.
The script's own output goes to stderr.

Exit codes:
  0 - Every run succeeded
  1 - A run failed; timing stops at the first failure
 -1 - Usage error (missing file, loops not a positive integer)`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeit(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runTimeit(opts *RootOptions, args []string, cmd *cobra.Command) error {
	if len(args) < 1 || len(args) > 2 {
		return NewExitError(ExitUsage, timeitUsage)
	}
	file := args[0]
	if info, err := os.Stat(file); err != nil || info.IsDir() {
		return NewExitError(ExitUsage, timeitUsage)
	}
	loops := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return NewExitError(ExitUsage, timeitUsage)
		}
		loops = n
	}

	timer := &timing.Timer{
		Stdout: cmd.ErrOrStderr(),
		Stderr: cmd.ErrOrStderr(),
		Logger: opts.logger(cmd.ErrOrStderr()),
	}
	report, err := timer.Run(cmd.Context(), file, loops)
	if err != nil {
		return WrapExitError(ExitFailure, "timed run failed", err)
	}
	return opts.formatter(cmd).Success(report)
}
