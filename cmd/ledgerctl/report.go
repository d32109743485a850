package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type reportCmd struct {
	customer string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the profit report of a customer" }
func (*reportCmd) Usage() string {
	return `ledgerctl report -customer <id>

  Displays the per-work and overall analytics of a customer together with
  the outstanding payments.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.customer, "customer", "", "Customer id (required)")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	customerID, err := uuid.Parse(c.customer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: -customer must be a customer id: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	snapshot, err := a.ledger.GetLedger(ctx, customerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := a.ledger.Breakdown(ctx, customerID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(reportMarkdown(snapshot, report, a.ledger.Currency()))
	return subcommands.ExitSuccess
}
