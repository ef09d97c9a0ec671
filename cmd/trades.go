package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog"
	"github.com/etnz/tradelog/renderer"
	"github.com/google/subcommands"
)

type tradesCmd struct {
	from, to string
	period   string
	saved    bool
	json     bool
	parts    int
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "display the trade report" }
func (*tradesCmd) Usage() string {
	return `tl trades [-s <date>] [-d <date>] [-p <period>] [-saved] [-json]

  Rebuilds the trades from the transactions of the period, without saving
  them, and displays them grouped by trade week with their running
  statistics. Use -saved to report on the saved trades instead.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "s", "", "Report from this date. See the user manual for supported date formats.")
	f.StringVar(&c.period, "p", "", "Use the current day, week, month, quarter or year instead of -s and -d")
	f.StringVar(&c.to, "d", "", "Report until this date, included.")
	f.BoolVar(&c.saved, "saved", false, "Report on the saved trades")
	f.BoolVar(&c.json, "json", false, "Print trades as JSON lines instead of a report")
	f.IntVar(&c.parts, "length-units", 2, "Number of units used to display trade lengths")
}

func (c *tradesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	list, open, err := a.tradeList(ctx, rng, c.saved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building trades: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := tradelog.EncodeTrades(os.Stdout, list.Trades()); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing trades: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	report := renderer.NewReport(list, open, renderer.Options{
		Currency:      a.cfg.Currency,
		Location:      a.cfg.Location(),
		Range:         rng,
		TimespanParts: c.parts,
	})
	printMarkdown(renderer.RenderTrades(report))
	return subcommands.ExitSuccess
}
