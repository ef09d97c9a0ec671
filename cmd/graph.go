package cmd

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/tradelog"
	"github.com/google/subcommands"
)

type graphCmd struct {
	from, to      string
	period        string
	saved         bool
	width, height int
}

func (*graphCmd) Name() string     { return "graph" }
func (*graphCmd) Synopsis() string { return "print the running return curve as CSV" }
func (*graphCmd) Usage() string {
	return `tl graph [-s <date>] [-d <date>] [-p <period>] [-saved] [-width <px>] [-height <px>]

  Prints one CSV row per trade: the day of year of its close, the running
  return, and its position on a graph of the given size.
`
}

func (c *graphCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "s", "", "Graph from this date. See the user manual for supported date formats.")
	f.StringVar(&c.period, "p", "", "Use the current day, week, month, quarter or year instead of -s and -d")
	f.StringVar(&c.to, "d", "", "Graph until this date, included.")
	f.BoolVar(&c.saved, "saved", false, "Graph the saved trades")
	f.IntVar(&c.width, "width", 800, "Graph width in pixels")
	f.IntVar(&c.height, "height", 400, "Graph height in pixels")
}

func (c *graphCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	list, _, err := a.tradeList(ctx, rng, c.saved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building trades: %v\n", err)
		return subcommands.ExitFailure
	}
	g := tradelog.GraphScale(list.GraphData(), c.width, c.height)

	w := csv.NewWriter(os.Stdout)
	w.Write([]string{"day", "running_return", "x", "y"})
	for _, p := range g.Points {
		w.Write([]string{strconv.Itoa(p.DayOfYear), p.RunningReturn.String(), p.X.StringFixed(1), p.Y.StringFixed(1)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing graph: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
