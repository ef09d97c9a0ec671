// Command tl rebuilds round-trip trades from brokerage transactions.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/tradelog/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var periods = predict.Set{"day", "week", "month", "quarter", "year"}

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"config":  predict.Files("*.yaml"),
		"db":      predict.Files("*.db"),
		"driver":  predict.Set{"sqlite", "pgx"},
		"account": predict.Nothing,
		"v":       predict.Nothing,
	},
	Sub: map[string]*complete.Command{
		"import": {
			Flags: map[string]complete.Predictor{"format": predict.Set{"broker", "jsonl"}},
			Args:  predict.Files("*.json*"),
		},
		"process": {
			Flags: map[string]complete.Predictor{
				"s":       predict.Something,
				"d":       predict.Something,
				"p":       periods,
				"all":     predict.Nothing,
				"strict":  predict.Nothing,
				"publish": predict.Nothing,
				"workers": predict.Something,
			},
		},
		"trades": {
			Flags: map[string]complete.Predictor{
				"s":            predict.Something,
				"d":            predict.Something,
				"p":            periods,
				"saved":        predict.Nothing,
				"json":         predict.Nothing,
				"length-units": predict.Something,
			},
		},
		"graph": {
			Flags: map[string]complete.Predictor{
				"s":      predict.Something,
				"d":      predict.Something,
				"p":      periods,
				"saved":  predict.Nothing,
				"width":  predict.Something,
				"height": predict.Something,
			},
		},
		"reset": {},
		"topic": {Args: predict.Set{"import", "reconcile", "strategy", "statistics", "config", "*"}},
		"help":  {},
	},
}

func main() {
	name := path.Base(os.Args[0])
	// exits when invoked by the shell for completion.
	completion.Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
