package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/coinfolio/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion answers shell completion requests. It exits the process when
// invoked by the shell's completion machinery, and is a no-op otherwise.
func completion() {
	jsonl := predict.Files("*.jsonl")
	symbols := predict.Set{"BTC", "ETH", "SOL"}

	(&complete.Command{
		Sub: map[string]*complete.Command{
			"fetch": {Flags: map[string]complete.Predictor{
				"s": symbols,
				"d": predict.Dirs("*"),
			}},
			"pnl": {Flags: map[string]complete.Predictor{
				"s":      symbols,
				"p":      predict.Nothing,
				"trades": jsonl,
				"json":   predict.Nothing,
			}},
			"transfers": {Flags: map[string]complete.Predictor{
				"s":           symbols,
				"deposits":    jsonl,
				"withdrawals": jsonl,
				"json":        predict.Nothing,
			}},
			"reconcile": {Flags: map[string]complete.Predictor{
				"s":           symbols,
				"parallelism": predict.Nothing,
				"json":        predict.Nothing,
			}},
			"topic": {Args: predict.Set{"readme", "fifo", "rewards", "reconciliation", "bitvavo"}},
		},
	}).Complete("cfo")
}
