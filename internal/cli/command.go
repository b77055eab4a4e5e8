package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Exit codes.
const (
	ExitOK = 0
	// ExitFailure covers usage errors and errors that stop a command.
	ExitFailure = 1
	// ExitProblems means the command completed but skipped some documents.
	ExitProblems = 2
)

// ErrUnexpectedArgument is returned when a command is given positional
// arguments. No command takes any.
var ErrUnexpectedArgument = errors.New("unexpected argument")

// Command is one subcommand of mdsummary.
type Command struct {
	// Flags holds the command's own flags. Global flags are parsed before.
	Flags *flag.FlagSet

	// Usage is shown after "mdsummary [options]"; its first word is the
	// command name. Examples: "run", "ls [flags]".
	Usage string

	// Short is the line in the global command listing.
	Short string

	// Long is shown by "mdsummary <cmd> --help". Short is used when empty.
	Long string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine returns the short help line for the main usage display.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-22s %s", c.Usage, c.Short)
}

// PrintHelp writes the full help for "mdsummary <cmd> --help" to w.
func (c *Command) PrintHelp(w io.Writer) {
	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	_, _ = fmt.Fprintf(w, "Usage: mdsummary [options] %s\n\n%s\n", c.Usage, desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		_, _ = fmt.Fprintf(w, "\nFlags:\n%s", c.Flags.FlagUsages())
	}
}

// Run parses args and executes the command. Returns the exit code.
// Usage errors point to the command's help instead of printing it.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(io.Discard)

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o.out)

		return ExitOK
	}

	if err == nil && c.Flags.NArg() > 0 {
		err = fmt.Errorf("%w %q", ErrUnexpectedArgument, c.Flags.Arg(0))
	}

	if err != nil {
		o.Errorf("%v", err)
		_, _ = fmt.Fprintf(o.errOut, "Run 'mdsummary %s --help' for usage.\n", c.Name())

		return ExitFailure
	}

	if err := c.Exec(ctx, o); err != nil {
		o.Errorf("%v", err)

		return ExitFailure
	}

	return o.Finish()
}
