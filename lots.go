package coinfolio

// lot represents a single purchase of an asset, tracked with its own
// remaining quantity and cost basis until fully consumed by sales.
type lot struct {
	timestamp int64    // acquisition time, epoch milliseconds
	quantity  Quantity // remaining units from this purchase
	cost      Money    // total acquisition cost of the remaining units
}

// lotQueue is the ordered collection of open purchase lots for exactly one
// asset. Lots are appended in chronological order and only ever consumed from
// the front, which is what makes the accounting strict FIFO. The queue is a
// value: selling returns a new queue rather than mutating lots in place.
type lotQueue []lot

// push appends a new purchase lot to the back of the queue.
func (q lotQueue) push(l lot) lotQueue {
	return append(q, l)
}

// sell consumes quantityToSell from the front of the queue using FIFO, and
// returns the cost basis of the sold units, the remaining queue, and the
// oversold shortfall.
//
// The cost of a partially consumed lot is apportioned proportionally to the
// fraction taken, which preserves the exact per-lot cost basis across partial
// consumptions. If the sale exceeds the whole queue, the queue is simply
// drained: oversold carries the shortfall, and whether it is an error is the
// caller's policy, not the queue's.
func (q lotQueue) sell(quantityToSell Quantity) (costBasis Money, remaining lotQueue, oversold Quantity) {
	for _, currentLot := range q {
		if quantityToSell.IsZero() {
			remaining = append(remaining, currentLot)
			continue
		}

		if currentLot.quantity.GreaterThan(quantityToSell) {
			// Partial sale from this lot
			costOfSoldPortion := currentLot.cost.Mul(quantityToSell).Div(currentLot.quantity)
			costBasis = costBasis.Add(costOfSoldPortion)
			remaining = append(remaining, lot{
				timestamp: currentLot.timestamp,
				quantity:  currentLot.quantity.Sub(quantityToSell),
				cost:      currentLot.cost.Sub(costOfSoldPortion),
			})
			quantityToSell = Q(0)
		} else {
			// Full sale of this lot
			costBasis = costBasis.Add(currentLot.cost)
			quantityToSell = quantityToSell.Sub(currentLot.quantity)
		}
	}
	return costBasis, remaining, quantityToSell
}

// totalQuantity returns the sum of all open lot quantities, which is the
// FIFO-implied remaining position.
func (q lotQueue) totalQuantity() Quantity {
	var total Quantity
	for _, l := range q {
		total = total.Add(l.quantity)
	}
	return total
}

// totalCost returns the sum of all open lot costs, the cost basis of the
// remaining position.
func (q lotQueue) totalCost() Money {
	var total Money
	for _, l := range q {
		total = total.Add(l.cost)
	}
	return total
}
