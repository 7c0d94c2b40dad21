package coinfolio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrUnknownTradeSide reports a trade whose side is neither "buy" nor "sell".
// A trade like that cannot be applied to the lot queue, and skipping it would
// silently desynchronize every later lot consumption, so it is fatal for the
// whole calculation.
var ErrUnknownTradeSide = errors.New("unknown trade side")

// ValidationError reports a malformed input record. It always identifies the
// offending record so the caller can fix the data at the source.
type ValidationError struct {
	Record string // compact rendering of the offending record
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record %s: %v", e.Record, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Side identifies the direction of a trade.
type Side int

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide parses a trade side, case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTradeSide, s)
	}
}

// Trade is a single executed order on one market, as reported by the
// exchange. Trades are immutable inputs to the P&L calculation.
type Trade struct {
	Side      Side
	Amount    Quantity // asset units traded, always positive
	Price     Money    // unit price in EUR
	Fee       Money    // exchange fee in EUR
	Timestamp int64    // epoch milliseconds
}

// Time returns the trade execution time.
func (t Trade) Time() time.Time { return time.UnixMilli(t.Timestamp) }

// Cost returns the total acquisition cost of a buy: amount*price + fee.
func (t Trade) Cost() Money { return t.Price.Mul(t.Amount).Add(t.Fee) }

// Proceeds returns the net proceeds of a sell: amount*price - fee.
func (t Trade) Proceeds() Money { return t.Price.Mul(t.Amount).Sub(t.Fee) }

// MarshalJSON implements the json.Marshaler interface for Trade.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("side", t.Side.String())
	w.Append("amount", t.Amount)
	w.Append("price", t.Price)
	w.Append("fee", t.Fee)
	w.Append("timestamp", t.Timestamp)
	return w.MarshalJSON()
}

// TradeRecord is the wire-level form of a trade: every numeric field is a
// decimal-safe string, and the timestamp may arrive as a string or a number.
type TradeRecord struct {
	Side      string      `json:"side"`
	Amount    string      `json:"amount"`
	Price     string      `json:"price"`
	Fee       string      `json:"fee"`
	Timestamp json.Number `json:"timestamp"`
}

// Trade validates the record and converts it to an exact Trade.
func (r TradeRecord) Trade() (Trade, error) {
	fail := func(err error) (Trade, error) {
		raw, _ := json.Marshal(r)
		return Trade{}, &ValidationError{Record: string(raw), Err: err}
	}

	side, err := ParseSide(r.Side)
	if err != nil {
		return fail(err)
	}
	amount, err := ParseQuantity(r.Amount)
	if err != nil {
		return fail(err)
	}
	if !amount.IsPositive() {
		return fail(fmt.Errorf("amount %q is not positive", r.Amount))
	}
	price, err := ParseMoney(r.Price)
	if err != nil {
		return fail(err)
	}
	if price.IsNegative() {
		return fail(fmt.Errorf("price %q is negative", r.Price))
	}
	fee := M(0)
	if r.Fee != "" {
		if fee, err = ParseMoney(r.Fee); err != nil {
			return fail(err)
		}
		if fee.IsNegative() {
			return fail(fmt.Errorf("fee %q is negative", r.Fee))
		}
	}
	ts, err := r.Timestamp.Int64()
	if err != nil {
		return fail(fmt.Errorf("invalid timestamp %q: %w", r.Timestamp, err))
	}

	return Trade{Side: side, Amount: amount, Price: price, Fee: fee, Timestamp: ts}, nil
}

// DecodeTrades decodes trades from a stream of JSONL data, one trade record
// per line, and returns them sorted in chronological order (oldest first),
// ready for the P&L calculator.
func DecodeTrades(r io.Reader) ([]Trade, error) {
	var trades []Trade
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var rec TradeRecord
		if err := json.Unmarshal(lineBytes, &rec); err != nil {
			return nil, &ValidationError{Record: string(lineBytes), Err: err}
		}
		trade, err := rec.Trade()
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sortTrades(trades)
	return trades, nil
}

// ConvertTrades validates a batch of trade records and returns the trades
// sorted in chronological order (oldest first), ready for the P&L
// calculator. The first invalid record aborts the whole batch.
func ConvertTrades(records []TradeRecord) ([]Trade, error) {
	trades := make([]Trade, 0, len(records))
	for _, rec := range records {
		trade, err := rec.Trade()
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	sortTrades(trades)
	return trades, nil
}

// EncodeTrade appends a single trade as one JSONL line.
func EncodeTrade(w io.Writer, t Trade) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// sortTrades sorts trades by timestamp, oldest first. The sort is stable so
// same-millisecond fills keep the order the exchange reported them in.
func sortTrades(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp < trades[j].Timestamp
	})
}
