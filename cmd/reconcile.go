package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/renderer"
	"github.com/google/subcommands"
)

// reconcileCmd holds the flags for the 'reconcile' subcommand.
type reconcileCmd struct {
	symbols     string
	parallelism int
	json        bool
}

func (*reconcileCmd) Name() string { return "reconcile" }
func (*reconcileCmd) Synopsis() string {
	return "reconcile exchange balances against the trade history"
}
func (*reconcileCmd) Usage() string {
	return `cfo reconcile -s <symbols> [-parallelism <n>] [-json]

  For each asset, compares the balance the exchange reports with the
  balance the trade history implies, and breaks the discrepancy down into
  transfers, likely rewards and an unexplained remainder.

Usage Examples:
$ cfo reconcile -s BTC,ETH,SOL

`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "s", "", "Comma separated asset symbols, e.g. BTC,ETH")
	f.IntVar(&c.parallelism, "parallelism", 0, "Cap on concurrent per-asset reconciliations. 0 means one goroutine per asset.")
	f.BoolVar(&c.json, "json", false, "Print the raw report as JSON")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var symbols []string
	for _, s := range strings.Split(c.symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -s <symbols> is required")
		return subcommands.ExitUsageError
	}

	reconciler := coinfolio.NewReconciler(newExchange())
	reconciler.Parallelism = c.parallelism
	report := reconciler.ReconcilePortfolio(ctx, symbols)

	if c.json {
		if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.RenderReconciliation(renderer.NewReconciliation(report)))

	// A failed asset should fail the command too, after the report is out.
	for _, a := range report.Assets {
		if a.Err != nil {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
