// Package cmd implements the CLI application to reconcile a crypto portfolio.
package cmd

import (
	"context"
	"os"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/bitvavo"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&fetchCmd{}, "data")

	c.Register(&pnlCmd{}, "reports")
	c.Register(&transfersCmd{}, "reports")
	c.Register(&reconcileCmd{}, "reports")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// newExchange is a variable so tests can plug in a fake exchange.
var newExchange func() coinfolio.Exchange = func() coinfolio.Exchange { return bitvavo.New() }

// DecodeTradesFile loads trades from a local JSONL file.
func DecodeTradesFile(name string) ([]coinfolio.Trade, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return coinfolio.DecodeTrades(f)
}

// DecodeTransfersFile loads transfers from a local JSONL file.
func DecodeTransfersFile(name string) ([]coinfolio.Transfer, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return coinfolio.DecodeTransfers(f)
}

// loadTrades returns the trade history for a symbol, from the local file when
// one is given, from the exchange otherwise.
func loadTrades(ctx context.Context, file, symbol string) ([]coinfolio.Trade, error) {
	if file != "" {
		return DecodeTradesFile(file)
	}
	records, err := newExchange().Trades(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return coinfolio.ConvertTrades(records)
}

// loadTransfers returns one side of the transfer history for a symbol, from
// the local file when one is given, from the exchange otherwise.
func loadTransfers(ctx context.Context, file, symbol string, fetch func(context.Context, string) ([]coinfolio.TransferRecord, error)) ([]coinfolio.Transfer, error) {
	if file != "" {
		return DecodeTransfersFile(file)
	}
	records, err := fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return coinfolio.ConvertTransfers(records)
}
