// Package bitvavo implements the exchange collaborator for the Bitvavo REST
// API: trade history, deposit and withdrawal history, balances and ticker
// prices, all returned as the decimal-safe string records the accounting
// core consumes.
package bitvavo

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/coinfolio"
)

const (
	apiBase = "https://api.bitvavo.com/v2"

	apiKeyEnv    = "BITVAVO_API_KEY"
	apiSecretEnv = "BITVAVO_API_SECRET"
)

var apiKeyFlag = flag.String("bitvavo-api-key", "", "Bitvavo API key.\n If missing it will read the environment variable \""+apiKeyEnv+"\".")
var apiSecretFlag = flag.String("bitvavo-api-secret", "", "Bitvavo API secret.\n If missing it will read the environment variable \""+apiSecretEnv+"\".")

func apiKey() string {
	if *apiKeyFlag == "" {
		*apiKeyFlag = os.Getenv(apiKeyEnv)
	}
	return *apiKeyFlag
}

func apiSecret() string {
	if *apiSecretFlag == "" {
		*apiSecretFlag = os.Getenv(apiSecretEnv)
	}
	return *apiSecretFlag
}

// Client calls the Bitvavo REST API. It implements coinfolio.Exchange.
//
// Rate limiting is handled crudely by the daily disk cache: a given request
// hits the network at most once per day, which is plenty for reconciliation
// runs (history only grows, and balances move slowly compared to prices).
type Client struct {
	base string
	http httpClient
}

var _ coinfolio.Exchange = (*Client)(nil)

// New creates a client using the API credentials from the command line flags
// or the environment.
func New() *Client {
	return &Client{base: apiBase, http: signed(apiKey(), apiSecret())}
}

// tradeEntry is one element of the /trades response.
type tradeEntry struct {
	Timestamp int64  `json:"timestamp"`
	Market    string `json:"market"`
	Side      string `json:"side"`
	Amount    string `json:"amount"`
	Price     string `json:"price"`
	Fee       string `json:"fee"`
}

// transferEntry is one element of the /depositHistory and /withdrawalHistory
// responses.
type transferEntry struct {
	Timestamp int64  `json:"timestamp"`
	Symbol    string `json:"symbol"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
}

// balanceEntry is one element of the /balance response.
type balanceEntry struct {
	Symbol    string `json:"symbol"`
	Available string `json:"available"`
	InOrder   string `json:"inOrder"`
}

// market returns the Bitvavo market name for an asset symbol. EUR is the
// only quote currency the accounting core supports.
func market(symbol string) string { return symbol + "-EUR" }

// Trades returns the full trade history for a symbol.
func (c *Client) Trades(ctx context.Context, symbol string) ([]coinfolio.TradeRecord, error) {
	addr := fmt.Sprintf("%s/trades?market=%s", c.base, url.QueryEscape(market(symbol)))
	var entries []tradeEntry
	if err := jwget(ctx, c.http, addr, &entries); err != nil {
		return nil, fmt.Errorf("cannot fetch trades for %q: %w", symbol, err)
	}

	records := make([]coinfolio.TradeRecord, len(entries))
	for i, e := range entries {
		records[i] = coinfolio.TradeRecord{
			Side:      e.Side,
			Amount:    e.Amount,
			Price:     e.Price,
			Fee:       e.Fee,
			Timestamp: jsonNumber(e.Timestamp),
		}
	}
	return records, nil
}

// Deposits returns the deposit history for a symbol.
func (c *Client) Deposits(ctx context.Context, symbol string) ([]coinfolio.TransferRecord, error) {
	return c.transferHistory(ctx, "depositHistory", symbol)
}

// Withdrawals returns the withdrawal history for a symbol.
func (c *Client) Withdrawals(ctx context.Context, symbol string) ([]coinfolio.TransferRecord, error) {
	return c.transferHistory(ctx, "withdrawalHistory", symbol)
}

func (c *Client) transferHistory(ctx context.Context, endpoint, symbol string) ([]coinfolio.TransferRecord, error) {
	addr := fmt.Sprintf("%s/%s?symbol=%s", c.base, endpoint, url.QueryEscape(symbol))
	var entries []transferEntry
	if err := jwget(ctx, c.http, addr, &entries); err != nil {
		return nil, fmt.Errorf("cannot fetch %s for %q: %w", endpoint, symbol, err)
	}

	records := make([]coinfolio.TransferRecord, len(entries))
	for i, e := range entries {
		records[i] = coinfolio.TransferRecord{
			Symbol:    e.Symbol,
			Amount:    e.Amount,
			Status:    e.Status,
			Timestamp: jsonNumber(e.Timestamp),
		}
	}
	return records, nil
}

// Balance returns the current balance for a symbol. An asset absent from the
// response has a zero balance.
func (c *Client) Balance(ctx context.Context, symbol string) (coinfolio.BalanceRecord, error) {
	addr := fmt.Sprintf("%s/balance?symbol=%s", c.base, url.QueryEscape(symbol))
	var entries []balanceEntry
	if err := jwget(ctx, c.http, addr, &entries); err != nil {
		return coinfolio.BalanceRecord{}, fmt.Errorf("cannot fetch balance for %q: %w", symbol, err)
	}
	for _, e := range entries {
		if e.Symbol == symbol {
			return coinfolio.BalanceRecord{Available: e.Available, InOrder: e.InOrder}, nil
		}
	}
	return coinfolio.BalanceRecord{Available: "0", InOrder: "0"}, nil
}

// Price returns the current EUR price for a symbol as a decimal string.
func (c *Client) Price(ctx context.Context, symbol string) (string, error) {
	addr := fmt.Sprintf("%s/ticker/price?market=%s", c.base, url.QueryEscape(market(symbol)))
	var jobj any
	if err := jwget(ctx, c.http, addr, &jobj); err != nil {
		return "", fmt.Errorf("cannot fetch price for %q: %w", symbol, err)
	}

	path := "$.price"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", fmt.Errorf("error parsing price for %q: %q %w", symbol, path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	price, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("error parsing price for %q: %q %s %v", symbol, path, "not a string", jval)
	}
	return price, nil
}
