package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/coinfolio"
	"github.com/google/subcommands"
)

// fetchCmd holds the flags for the 'fetch' subcommand.
type fetchCmd struct {
	symbol string
	dir    string
}

func (*fetchCmd) Name() string { return "fetch" }
func (*fetchCmd) Synopsis() string {
	return "download an asset's trade and transfer history to local JSONL files"
}
func (*fetchCmd) Usage() string {
	return `cfo fetch -s <symbol> [-d <dir>]

  Downloads the full trade, deposit and withdrawal history of an asset,
  and its current balance, from the exchange and writes them to
  <symbol>-trades.jsonl, <symbol>-deposits.jsonl,
  <symbol>-withdrawals.jsonl and <symbol>-balance.jsonl. The files can
  then be fed back to the pnl and transfers commands, or kept as an
  offline archive.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Asset symbol, e.g. BTC")
	f.StringVar(&c.dir, "d", ".", "Directory to write the files to")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -s <symbol> is required")
		return subcommands.ExitUsageError
	}

	exchange := newExchange()

	trades, err := loadTrades(ctx, "", c.symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching trades: %v\n", err)
		return subcommands.ExitFailure
	}
	if status := c.writeFile("trades", len(trades), func(f *os.File) error {
		for _, t := range trades {
			if err := coinfolio.EncodeTrade(f, t); err != nil {
				return err
			}
		}
		return nil
	}); status != subcommands.ExitSuccess {
		return status
	}

	for side, fetch := range map[string]func(context.Context, string) ([]coinfolio.TransferRecord, error){
		"deposits":    exchange.Deposits,
		"withdrawals": exchange.Withdrawals,
	} {
		transfers, err := loadTransfers(ctx, "", c.symbol, fetch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", side, err)
			return subcommands.ExitFailure
		}
		if status := c.writeFile(side, len(transfers), func(f *os.File) error {
			for _, t := range transfers {
				if err := coinfolio.EncodeTransfer(f, t); err != nil {
					return err
				}
			}
			return nil
		}); status != subcommands.ExitSuccess {
			return status
		}
	}

	balanceRecord, err := exchange.Balance(ctx, c.symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching balance: %v\n", err)
		return subcommands.ExitFailure
	}
	balance, err := balanceRecord.Balance()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding balance: %v\n", err)
		return subcommands.ExitFailure
	}
	return c.writeFile("balance", 1, func(f *os.File) error {
		data, err := json.Marshal(balance)
		if err != nil {
			return err
		}
		_, err = f.Write(append(data, '\n'))
		return err
	})
}

// writeFile writes one JSONL file and reports what it did.
func (c *fetchCmd) writeFile(kind string, count int, write func(*os.File) error) subcommands.ExitStatus {
	name := filepath.Join(c.dir, strings.ToLower(c.symbol)+"-"+kind+".jsonl")
	f, err := os.Create(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", name, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := write(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", name, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully wrote %d %s to %s\n", count, kind, name)
	return subcommands.ExitSuccess
}
