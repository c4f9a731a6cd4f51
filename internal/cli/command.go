package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one top-level memdir command.
type Command struct {
	// Flags holds command flags. Parsing stops at the first error.
	Flags *flag.FlagSet

	// Usage is the command line after "memdir", name first, for example
	// "run <script>".
	Usage string

	// Short is the one-line description used in listings.
	Short string

	// Long is shown by "memdir <cmd> --help". Short is used when empty.
	Long string

	// MinArgs and MaxArgs bound the positional arguments. MaxArgs < 0 means
	// unbounded.
	MinArgs, MaxArgs int

	// Exec runs the command after flags and arguments were validated.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the first word of Usage.
func (c *Command) Name() string {
	return usageName(c.Usage)
}

// HelpLine returns the listing line for the global usage.
func (c *Command) HelpLine() string {
	return helpLine(c.Usage, c.Short, 22)
}

// PrintHelp prints the full help for "memdir <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	printDetail(o, "memdir "+c.Usage, c.Long, c.Short)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")
		o.Printf("%s", c.Flags.FlagUsages())
	}
}

// Run parses flags, checks the argument count and executes the command.
// Returns the exit code. Errors go to stderr as "error: <msg>".
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)

		return 0
	}

	if err == nil {
		err = c.checkArgs(c.Flags.Args())
		if err != nil {
			o.ErrPrintln("error:", err)

			return 1
		}
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(&IO{out: o.errOut, errOut: o.errOut})

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}

func (c *Command) checkArgs(args []string) error {
	if len(args) < c.MinArgs || (c.MaxArgs >= 0 && len(args) > c.MaxArgs) {
		return fmt.Errorf("%w: %s", errUsage, c.Usage)
	}

	return nil
}

func usageName(usage string) string {
	name, _, _ := strings.Cut(usage, " ")

	return name
}

// helpLine renders one "  <usage>  <short>" listing row, shared by the
// global usage and the session help.
func helpLine(usage, short string, width int) string {
	return fmt.Sprintf("  %-*s %s", width, usage, short)
}

func printDetail(o *IO, usage, long, short string) {
	o.Println("Usage:", usage)
	o.Println()

	if long == "" {
		long = short
	}

	o.Println(long)
}
