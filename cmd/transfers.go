package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// transfersCmd holds the flags for the 'transfers' subcommand.
type transfersCmd struct {
	symbol      string
	deposits    string
	withdrawals string
	json        bool
}

func (*transfersCmd) Name() string { return "transfers" }
func (*transfersCmd) Synopsis() string {
	return "display the transfer analysis for an asset, including likely rewards"
}
func (*transfersCmd) Usage() string {
	return `cfo transfers -s <symbol> [-deposits <file>] [-withdrawals <file>] [-json]

  Summarizes the completed deposits and withdrawals of an asset and
  estimates how much of the deposit history looks like rewards rather
  than genuine external transfers.
`
}

func (c *transfersCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Asset symbol, e.g. BTC")
	f.StringVar(&c.deposits, "deposits", "", "Local deposits file (JSONL). Fetched from the exchange when empty.")
	f.StringVar(&c.withdrawals, "withdrawals", "", "Local withdrawals file (JSONL). Fetched from the exchange when empty.")
	f.BoolVar(&c.json, "json", false, "Print the raw result as JSON")
}

func (c *transfersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -s <symbol> is required")
		return subcommands.ExitUsageError
	}

	exchange := newExchange()
	deposits, err := loadTransfers(ctx, c.deposits, c.symbol, exchange.Deposits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading deposits: %v\n", err)
		return subcommands.ExitFailure
	}
	withdrawals, err := loadTransfers(ctx, c.withdrawals, c.symbol, exchange.Withdrawals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading withdrawals: %v\n", err)
		return subcommands.ExitFailure
	}

	summary := coinfolio.AnalyzeTransfers(deposits, withdrawals)

	if c.json {
		if err := json.NewEncoder(os.Stdout).Encode(summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderTransfers(renderer.NewTransfers(c.symbol, summary)))
	return subcommands.ExitSuccess
}
