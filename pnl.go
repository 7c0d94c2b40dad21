package coinfolio

import (
	"fmt"
	"log"
)

// PnLResult is an immutable snapshot of the FIFO profit and loss calculation
// for one asset. It is computed fresh on every invocation and never persisted
// by this package.
type PnLResult struct {
	Amount     Quantity // FIFO-implied remaining position
	Cost       Money    // cost basis of the remaining position
	Value      Money    // remaining position valued at the current price
	Realized   Money    // profit locked in by completed sales
	Unrealized Money    // paper profit on the remaining position
	TotalBuys  Money    // total acquisition cost over the whole history
	Oversold   Quantity // units sold beyond recorded purchases
}

// MarshalJSON implements the json.Marshaler interface for PnLResult.
func (r PnLResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("amount", r.Amount)
	w.Append("cost_eur", r.Cost)
	w.Append("value_eur", r.Value)
	w.Append("realised_eur", r.Realized)
	w.Append("unrealised_eur", r.Unrealized)
	w.Append("total_buys_eur", r.TotalBuys)
	w.Optional("oversold", r.Oversold)
	return w.MarshalJSON()
}

// CalculatePnL replays a full chronological trade history through a FIFO lot
// queue and values the remaining position at currentPrice.
//
// Trades must be sorted by timestamp, oldest first (DecodeTrades returns them
// that way); the caller is responsible for the ordering. A trade with an
// unknown side aborts the whole calculation: FIFO state is order-dependent,
// and skipping a record would silently corrupt every subsequent lot
// consumption.
//
// Selling more than the recorded purchases hold is not an error. The queue is
// drained, the shortfall is reported in Oversold, and the discrepancy
// breakdown downstream explains it via transfers. A trade history fetched
// from an exchange routinely misses units that arrived by deposit.
func CalculatePnL(trades []Trade, currentPrice Money) (PnLResult, error) {
	if currentPrice.IsNegative() {
		return PnLResult{}, fmt.Errorf("current price %s is negative", currentPrice)
	}

	var (
		queue     lotQueue
		realized  Money
		totalBuys Money
		oversold  Quantity
	)

	for _, trade := range trades {
		switch trade.Side {
		case Buy:
			cost := trade.Cost()
			queue = queue.push(lot{timestamp: trade.Timestamp, quantity: trade.Amount, cost: cost})
			totalBuys = totalBuys.Add(cost)
		case Sell:
			costBasis, remaining, shortfall := queue.sell(trade.Amount)
			queue = remaining
			if !shortfall.IsZero() {
				log.Printf("oversell of %s units at %s: trade history is missing purchases, draining lots", shortfall, trade.Time().Format("2006-01-02 15:04:05"))
				oversold = oversold.Add(shortfall)
			}
			realized = realized.Add(trade.Proceeds().Sub(costBasis))
		default:
			return PnLResult{}, &ValidationError{
				Record: fmt.Sprintf(`{"side":%d,"timestamp":%d}`, trade.Side, trade.Timestamp),
				Err:    ErrUnknownTradeSide,
			}
		}
	}

	amount := queue.totalQuantity()
	cost := queue.totalCost()
	value := currentPrice.Mul(amount)

	return PnLResult{
		Amount:     amount,
		Cost:       cost,
		Value:      value,
		Realized:   realized,
		Unrealized: value.Sub(cost),
		TotalBuys:  totalBuys,
		Oversold:   oversold,
	}, nil
}
