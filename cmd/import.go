package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type importCmd struct {
	format string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "load transactions into the database" }
func (*importCmd) Usage() string {
	return `tl import [-format broker|jsonl] <file>...

  Loads transactions into the database of the account. Transactions already
  stored, by transaction id, are counted as duplicates and skipped.

  The broker format is the transaction history document of the broker;
  pending orders and items that are not trades are skipped. The jsonl
  format holds one transaction per line.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "broker", "Input format: broker or jsonl")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing file to import")
		return subcommands.ExitUsageError
	}
	if c.format != "broker" && c.format != "jsonl" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	a := mustOpen(ctx)
	if a == nil {
		return subcommands.ExitFailure
	}
	defer a.Close()

	var inserted, duplicates, pending int
	for _, name := range f.Args() {
		records, p, err := c.read(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		n, d, err := a.store.InsertTransactions(ctx, a.cfg.AccountID, a.cfg.TransactionType, records)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		a.log.Info("file imported", zap.String("file", name), zap.Int("inserted", n), zap.Int("duplicates", d), zap.Int("pending", p))
		inserted += n
		duplicates += d
		pending += p
	}
	fmt.Printf("Imported %d transactions (%d duplicates, %d pending orders skipped)\n", inserted, duplicates, pending)
	return subcommands.ExitSuccess
}

// read returns the records of a file and the number of pending orders.
func (c *importCmd) read(name string) ([]tradelog.TransactionRecord, int, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	if c.format == "broker" {
		imp, err := tradelog.ImportBrokerJSON(file)
		if err != nil {
			return nil, 0, err
		}
		return imp.Records, imp.Pending, nil
	}
	txs, err := tradelog.DecodeTransactions(file)
	if err != nil {
		return nil, 0, err
	}
	records := make([]tradelog.TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, tx.Record())
	}
	return records, 0, nil
}
