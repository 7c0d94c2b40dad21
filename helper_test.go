package coinfolio

// EUR is a helper for tests to create euro money from a const.
func EUR(v float64) Money { return M(v) }

// buy is a helper for tests to create a buy trade.
func buy(ts int64, amount, price, fee float64) Trade {
	return Trade{Side: Buy, Amount: Q(amount), Price: EUR(price), Fee: EUR(fee), Timestamp: ts}
}

// sell is a helper for tests to create a sell trade.
func sell(ts int64, amount, price, fee float64) Trade {
	return Trade{Side: Sell, Amount: Q(amount), Price: EUR(price), Fee: EUR(fee), Timestamp: ts}
}

// deposit is a helper for tests to create a completed deposit.
func deposit(ts int64, amount float64) Transfer {
	return Transfer{Symbol: "BTC", Amount: Q(amount), Status: TransferCompleted, Timestamp: ts}
}

// withdrawal is a helper for tests to create a completed withdrawal.
func withdrawal(ts int64, amount float64) Transfer {
	return Transfer{Symbol: "BTC", Amount: Q(amount), Status: TransferCompleted, Timestamp: ts}
}
