package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog/publish"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type processCmd struct {
	from, to string
	period   string
	all      bool
	strict   bool
	publish  bool
	workers  int
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "rebuild trades from transactions and save them" }
func (*processCmd) Usage() string {
	return `tl process [-s <date>] [-d <date>] [-p <period>] [-all] [-strict] [-workers <n>] [-publish]

  Reads the transactions not yet part of a saved trade, rebuilds the trades,
  saves the completed ones and links their transactions to them. Trades
  still open are left for a later run.

  Transactions that no trade could accept are reported as unresolved.
`
}

func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "s", "", "Process transactions from this date. See the user manual for supported date formats.")
	f.StringVar(&c.period, "p", "", "Use the current day, week, month, quarter or year instead of -s and -d")
	f.StringVar(&c.to, "d", "", "Process transactions until this date, included.")
	f.BoolVar(&c.all, "all", false, "Process every transaction again and replace the saved trades of the account")
	f.BoolVar(&c.strict, "strict", false, "Fail without saving anything if some transactions are unresolved")
	f.BoolVar(&c.publish, "publish", false, "Publish the saved trades to Kafka")
	f.IntVar(&c.workers, "workers", 0, "Number of partitions processed in parallel, defaults to the configuration")
}

func (c *processCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rng, err := parseRange(c.from, c.to, c.period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
		return subcommands.ExitUsageError
	}
	a := mustOpen(ctx)
	if a == nil {
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.publish && !a.cfg.Publishing() {
		fmt.Fprintln(os.Stderr, "Error: -publish requires Kafka brokers in the configuration")
		return subcommands.ExitUsageError
	}

	// With -all the saved trades are replaced only once the new ones are
	// known, in the same SQL transaction.
	txs, err := a.transactions(ctx, rng, !c.all)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	res, unresolved := a.reconciler(c.workers).Reconcile(txs)
	printDiagnostics(res.Diagnostics(), *Verbose)
	if unresolved != nil && c.strict {
		fmt.Fprintf(os.Stderr, "Error: %v\n", unresolved)
		return subcommands.ExitFailure
	}

	list := res.TradeList()
	list.Sort()
	trades := list.Trades()
	if len(trades) == 0 && !c.all {
		fmt.Println(summaryStyle.Render(fmt.Sprintf("No trade completed, %d open, %d unresolved", len(openTrades(res)), unresolvedCount(res))))
		return subcommands.ExitSuccess
	}

	var (
		batch string
		ids   []int64
	)
	if c.all {
		var deleted int64
		deleted, batch, ids, err = a.store.ReplaceTrades(ctx, a.cfg.AccountID, trades)
		if err == nil {
			a.log.Info("trades deleted", zap.Int64("count", deleted))
		}
	} else {
		batch, ids, err = a.store.WriteTrades(ctx, a.cfg.AccountID, trades)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving trades, nothing was saved: %v\n", err)
		return subcommands.ExitFailure
	}
	a.log.Info("trades saved", zap.String("batch_id", batch), zap.Int("count", len(ids)))

	if c.publish {
		p := publish.New(publish.NewKafkaWriter(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic), a.log)
		defer p.Close()
		if err := p.Publish(ctx, a.cfg.AccountID, batch, ids, trades); err != nil {
			fmt.Fprintf(os.Stderr, "Error publishing trades of batch %s: %v\n", batch, err)
			return subcommands.ExitFailure
		}
	}

	fmt.Println(summaryStyle.Render(fmt.Sprintf("Saved %d trades in batch %s, %d open, %d unresolved",
		len(ids), batch, len(openTrades(res)), unresolvedCount(res))))
	return subcommands.ExitSuccess
}
