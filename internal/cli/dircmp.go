package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/dirdiff"
)

const dircmpUsage = "usage: conform dircmp <dir1> <dir2>"

// NewDircmpCommand creates the dircmp command.
func NewDircmpCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dircmp <dir1> <dir2>",
		Short: "Compare two directory trees",
		Long: `Compare two directory trees by name and content.

Exit codes:
  0 - The trees are identical
  1 - The trees differ
 -1 - Usage error (wrong argument count, argument is not a directory)`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDircmp(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runDircmp(opts *RootOptions, args []string, cmd *cobra.Command) error {
	if len(args) != 2 || !isDir(args[0]) || !isDir(args[1]) {
		return NewExitError(ExitUsage, dircmpUsage)
	}

	diff, err := dirdiff.Compare(args[0], args[1])
	if err != nil {
		return WrapExitError(ExitCommandError, "compare failed", err)
	}
	if err := opts.formatter(cmd).Success(diff); err != nil {
		return err
	}
	if !diff.Equal() {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
