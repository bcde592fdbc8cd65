package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"case-tracker/internal/domain/cases"
	"case-tracker/internal/report"

	"github.com/google/subcommands"
)

type dashboardCmd struct {
	query string
	limit int
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "list cases with their deadline status" }
func (*dashboardCmd) Usage() string {
	return `casectl dashboard [-q <text>] [-n <limit>]

  Lists cases, newest first, with the urgency label of their current deadline.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "filter by case number or subject name")
	f.IntVar(&c.limit, "n", 0, "maximum number of cases (0 = default)")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStorage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	rows, err := newServices(st.SQL).casefile.Dashboard(ctx, cases.ListFilter{Query: c.query, Limit: c.limit})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing cases: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(report.DashboardMarkdown(rows))
	return subcommands.ExitSuccess
}

type statementCmd struct {
	caseID string
	xlsx   string
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "print the ledger statement of a case" }
func (*statementCmd) Usage() string {
	return `casectl statement -case <id> [-xlsx <file>]

  Prints the posted entries with running balance, totals and pending drafts.
  With -xlsx the statement is written as a spreadsheet instead.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.caseID, "case", "", "case ID")
	f.StringVar(&c.xlsx, "xlsx", "", "write the statement to this .xlsx file")
}

func (c *statementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.caseID == "" {
		fmt.Fprintln(os.Stderr, "Error: -case is required")
		return subcommands.ExitUsageError
	}

	st, err := openStorage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	svc := newServices(st.SQL)
	cs, err := svc.cases.GetByID(ctx, c.caseID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading case: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := svc.ledger.GetLedger(ctx, cs.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.xlsx == "" {
		printMarkdown(report.Markdown(cs, l))
		return subcommands.ExitSuccess
	}

	f, err := os.Create(c.xlsx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", c.xlsx, err)
		return subcommands.ExitFailure
	}
	defer f.Close()
	if err := report.WriteXLSX(f, cs, l); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing statement: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(c.xlsx)
	return subcommands.ExitSuccess
}
