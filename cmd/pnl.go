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

// pnlCmd holds the flags for the 'pnl' subcommand.
type pnlCmd struct {
	symbol string
	price  string
	trades string
	json   bool
}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "display the FIFO profit and loss for an asset" }
func (*pnlCmd) Usage() string {
	return `cfo pnl -s <symbol> [-p <price>] [-trades <file>] [-json]

  Computes the profit and loss of an asset from its full trade history,
  using strict first-in first-out accounting.
`
}

func (c *pnlCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Asset symbol, e.g. BTC")
	f.StringVar(&c.price, "p", "", "Current price in EUR. Fetched from the exchange when empty.")
	f.StringVar(&c.trades, "trades", "", "Local trades file (JSONL). Fetched from the exchange when empty.")
	f.BoolVar(&c.json, "json", false, "Print the raw result as JSON")
}

func (c *pnlCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -s <symbol> is required")
		return subcommands.ExitUsageError
	}

	trades, err := loadTrades(ctx, c.trades, c.symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trades: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.price == "" {
		c.price, err = newExchange().Price(ctx, c.symbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching price: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	price, err := coinfolio.ParseMoney(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
		return subcommands.ExitUsageError
	}

	result, err := coinfolio.CalculatePnL(trades, price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating pnl: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderPnL(renderer.NewPnL(c.symbol, price, result)))
	return subcommands.ExitSuccess
}
