package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/conform/internal/gen"
	"github.com/roach88/conform/internal/generators"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Out        string
	Check      bool
	Roots      []string
	Exclude    []string
	OmitHeader bool
}

// GenerateResult reports what each phase did.
type GenerateResult struct {
	Check    bool          `json:"check"`
	Outcomes []gen.Outcome `json:"outcomes"`
}

// Different counts targets that check mode found out of date.
func (r GenerateResult) Different() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Different {
			n++
		}
	}
	return n
}

// WriteText prints one line per phase and target.
func (r GenerateResult) WriteText(w io.Writer) error {
	for _, o := range r.Outcomes {
		state := "unchanged"
		switch {
		case o.Different:
			state = "differs, new text in " + o.DiffPath
		case o.Changed:
			state = "updated"
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s\n", o.Phase, o.Target, state); err != nil {
			return err
		}
	}
	return nil
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate [phase...]",
		Short: "Regenerate marker-delimited code regions",
		Long: `Run code generator phases. Each phase owns the region between
"// BEGIN <phase>" and "// END <phase>" in its target file and rewrites only
that region. Targets whose text would not change are left untouched.

Phases: errno, aliases, radix. With no arguments every phase runs.

With --root, phase targets are found by scanning the given directories for
files that already contain the phase's begin marker.

With --check, no target is modified; out-of-date targets get the new text
saved next to them as <target>.diff and the command exits 1.

Examples:
  conform generate --out ./src/Runtime
  conform generate aliases --root ./src --exclude obj
  conform generate --out ./src/Runtime --check`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", ".", "directory for generated files")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "report out-of-date targets without writing them")
	cmd.Flags().StringSliceVar(&opts.Roots, "root", nil, "scan these directories for targets instead of using --out")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "directories to skip while scanning")
	cmd.Flags().BoolVar(&opts.OmitHeader, "omit-header", false, "leave the generated-code banner out of regions")

	return cmd
}

func runGenerate(opts *GenerateOptions, names []string, cmd *cobra.Command) error {
	phases, err := generators.Select(generators.Phases(opts.Out), names)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid phase", err)
	}

	driver := gen.NewDriver(gen.LineMarkers("//"))
	driver.CheckOnly = opts.Check
	driver.OmitHeader = opts.OmitHeader
	driver.Logger = opts.logger(cmd.ErrOrStderr())
	if len(opts.Roots) > 0 {
		driver.Roots = opts.Roots
		driver.Exclude = opts.Exclude
		driver.Extensions = []string{".cs"}
		for i := range phases {
			phases[i].Target = ""
		}
	}

	outcomes, err := driver.Run(phases...)
	if err != nil {
		return WrapExitError(ExitCommandError, "generation failed", err)
	}

	result := GenerateResult{Check: opts.Check, Outcomes: outcomes}
	if err := opts.formatter(cmd).Success(result); err != nil {
		return err
	}
	if n := result.Different(); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d generated file(s) out of date", n))
	}
	return nil
}
