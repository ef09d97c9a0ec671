package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type resetCmd struct{}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete the saved trades of the account" }
func (*resetCmd) Usage() string {
	return `tl reset

  Deletes the saved trades of the account and unlinks their transactions, so
  that the next "tl process" rebuilds every trade.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {}

func (c *resetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := mustOpen(ctx)
	if a == nil {
		return subcommands.ExitFailure
	}
	defer a.Close()

	n, err := a.store.DeleteTrades(ctx, a.cfg.AccountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting trades: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted %d trades\n", n)
	return subcommands.ExitSuccess
}
