package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/envutil"
)

// NewEnvCommand creates the env command.
func NewEnvCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env <name>",
		Short: "Look up an environment variable ignoring case",
		Long: `Print the value of the first environment variable whose name matches
<name> under Unicode case folding. Exits 1 when none matches.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok := envutil.Lookup(args[0])
			if !ok {
				return NewExitError(ExitFailure, args[0]+" is not set")
			}
			return rootOpts.formatter(cmd).Success(value)
		},
	}
	return cmd
}
