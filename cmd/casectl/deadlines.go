package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"case-tracker/internal/domain/deadline"

	"github.com/google/subcommands"
)

// Estos dos no abren el store.

type classifyCmd struct{}

func (*classifyCmd) Name() string     { return "classify" }
func (*classifyCmd) Synopsis() string { return "print the urgency label of a deadline" }
func (*classifyCmd) Usage() string {
	return `casectl classify <dd/mm/yyyy>

  Prints the status label (OVERDUE, DUE TODAY, Due in N days, On Track...) as of today.
`
}
func (*classifyCmd) SetFlags(*flag.FlagSet) {}

func (*classifyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one date")
		return subcommands.ExitUsageError
	}
	label, sev := deadline.Classify(f.Arg(0), time.Now())
	fmt.Printf("%s (%s)\n", label, sev)
	return subcommands.ExitSuccess
}

type deadlineCmd struct {
	base   string
	manual string
}

func (*deadlineCmd) Name() string     { return "deadline" }
func (*deadlineCmd) Synopsis() string { return "compute the next deadline and notify date" }
func (*deadlineCmd) Usage() string {
	return `casectl deadline [-base <dd/mm/yyyy>] [-manual <dd/mm/yyyy>]

  A valid -manual date wins verbatim. Otherwise base (today when empty) + 14 days,
  moved to Monday when it lands on a weekend.
`
}

func (c *deadlineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "base date")
	f.StringVar(&c.manual, "manual", "", "manual deadline override")
}

func (c *deadlineCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	r := deadline.Compute(time.Now(), c.base, c.manual)
	if r.IsZero() {
		fmt.Fprintln(os.Stderr, "Error: no deadline could be computed")
		return subcommands.ExitFailure
	}
	fmt.Printf("deadline:  %s\nnotify by: %s\n", r.Deadline, r.NotifyBy)
	return subcommands.ExitSuccess
}
