package renderer

import (
	"github.com/etnz/coinfolio"
)

// PnL is a struct to represent one asset's profit and loss in a report.
// Numbers are handled using the exact decimal types (Money, Quantity) so
// that they already contain basic renderers (String, SignedString).
type PnL struct {
	// Symbol of the asset.
	Symbol string `json:"symbol"`
	// Price used to value the remaining position.
	Price coinfolio.Money `json:"price"`
	// Amount is the FIFO-implied remaining position.
	Amount coinfolio.Quantity `json:"amount"`
	// Cost is the cost basis of the remaining position.
	Cost coinfolio.Money `json:"cost"`
	// Value is the remaining position valued at Price.
	Value coinfolio.Money `json:"value"`
	// Realized is the profit locked in by completed sales.
	Realized coinfolio.Money `json:"realized"`
	// Unrealized is the paper profit on the remaining position.
	Unrealized coinfolio.Money `json:"unrealized"`
	// TotalReturn is Realized + Unrealized.
	TotalReturn coinfolio.Money `json:"totalReturn"`
	// TotalBuys is the total acquisition cost over the whole history.
	TotalBuys coinfolio.Money `json:"totalBuys"`
	// Oversold is the quantity sold beyond recorded purchases, zero in a
	// consistent history.
	Oversold coinfolio.Quantity `json:"oversold"`
}

// NewPnL creates a new PnL view from a calculation result.
func NewPnL(symbol string, price coinfolio.Money, r coinfolio.PnLResult) *PnL {
	return &PnL{
		Symbol:      symbol,
		Price:       price,
		Amount:      r.Amount,
		Cost:        r.Cost,
		Value:       r.Value,
		Realized:    r.Realized,
		Unrealized:  r.Unrealized,
		TotalReturn: r.Realized.Add(r.Unrealized),
		TotalBuys:   r.TotalBuys,
		Oversold:    r.Oversold,
	}
}
