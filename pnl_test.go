package coinfolio

import (
	"errors"
	"testing"
)

func TestCalculatePnL(t *testing.T) {
	testCases := []struct {
		name           string
		trades         []Trade
		price          float64
		wantAmount     Quantity
		wantCost       Money
		wantRealized   Money
		wantUnrealized Money
		wantTotalBuys  Money
	}{
		{
			name:           "empty trade list",
			trades:         nil,
			price:          100,
			wantAmount:     Q(0),
			wantCost:       EUR(0),
			wantRealized:   EUR(0),
			wantUnrealized: EUR(0),
			wantTotalBuys:  EUR(0),
		},
		{
			name:           "single buy no sell",
			trades:         []Trade{buy(1, 2, 10, 0.1)},
			price:          12,
			wantAmount:     Q(2),
			wantCost:       EUR(20.1),
			wantRealized:   EUR(0),
			wantUnrealized: EUR(3.9),
			wantTotalBuys:  EUR(20.1),
		},
		{
			name:           "partial sell",
			trades:         []Trade{buy(1, 2, 10, 0), sell(2, 1, 15, 0)},
			price:          14,
			wantAmount:     Q(1),
			wantCost:       EUR(10),
			wantRealized:   EUR(5),
			wantUnrealized: EUR(4),
			wantTotalBuys:  EUR(20),
		},
		{
			name:           "cross-lot sell",
			trades:         []Trade{buy(1, 1, 100, 0), buy(2, 2, 120, 0), sell(3, 1.5, 130, 0)},
			price:          125,
			wantAmount:     Q(1.5),
			wantCost:       EUR(180),
			wantRealized:   EUR(35),
			wantUnrealized: EUR(7.5),
			wantTotalBuys:  EUR(340),
		},
		{
			name:           "full liquidation",
			trades:         []Trade{buy(1, 3, 50, 0), sell(2, 3, 60, 0)},
			price:          70,
			wantAmount:     Q(0),
			wantCost:       EUR(0),
			wantRealized:   EUR(30),
			wantUnrealized: EUR(0),
			wantTotalBuys:  EUR(150),
		},
		{
			name:           "fees reduce proceeds and increase cost",
			trades:         []Trade{buy(1, 1, 100, 1), sell(2, 1, 110, 1)},
			price:          0,
			wantAmount:     Q(0),
			wantCost:       EUR(0),
			wantRealized:   EUR(8),
			wantUnrealized: EUR(0),
			wantTotalBuys:  EUR(101),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculatePnL(tc.trades, EUR(tc.price))
			if err != nil {
				t.Fatalf("CalculatePnL() failed: %v", err)
			}
			if !got.Amount.Equal(tc.wantAmount) {
				t.Errorf("Amount = %s, want %s", got.Amount, tc.wantAmount)
			}
			if !got.Cost.Equal(tc.wantCost) {
				t.Errorf("Cost = %s, want %s", got.Cost, tc.wantCost)
			}
			if !got.Realized.Equal(tc.wantRealized) {
				t.Errorf("Realized = %s, want %s", got.Realized, tc.wantRealized)
			}
			if !got.Unrealized.Equal(tc.wantUnrealized) {
				t.Errorf("Unrealized = %s, want %s", got.Unrealized, tc.wantUnrealized)
			}
			if !got.TotalBuys.Equal(tc.wantTotalBuys) {
				t.Errorf("TotalBuys = %s, want %s", got.TotalBuys, tc.wantTotalBuys)
			}
			if !got.Value.Equal(EUR(tc.price).Mul(tc.wantAmount)) {
				t.Errorf("Value = %s, want amount*price", got.Value)
			}
		})
	}
}

func TestCalculatePnL_Oversell(t *testing.T) {
	// Selling more than the recorded purchases is not an error: the queue is
	// drained and the shortfall reported.
	trades := []Trade{buy(1, 1, 100, 0), sell(2, 1.5, 100, 0)}

	got, err := CalculatePnL(trades, EUR(100))
	if err != nil {
		t.Fatalf("CalculatePnL() failed on oversell: %v", err)
	}
	if !got.Amount.IsZero() {
		t.Errorf("Amount = %s, want 0 after ledger drain", got.Amount)
	}
	if !got.Oversold.Equal(Q(0.5)) {
		t.Errorf("Oversold = %s, want 0.5", got.Oversold)
	}
	// Proceeds 150, cost basis of what the ledger held 100.
	if !got.Realized.Equal(EUR(50)) {
		t.Errorf("Realized = %s, want 50", got.Realized)
	}
}

func TestCalculatePnL_UnknownSide(t *testing.T) {
	trades := []Trade{{Side: Side(42), Amount: Q(1), Price: EUR(10), Timestamp: 1}}

	_, err := CalculatePnL(trades, EUR(10))
	if err == nil {
		t.Fatal("CalculatePnL() accepted a trade with an unknown side")
	}
	if !errors.Is(err, ErrUnknownTradeSide) {
		t.Errorf("error = %v, want ErrUnknownTradeSide", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error = %v, want a *ValidationError identifying the record", err)
	}
}

func TestCalculatePnL_Idempotent(t *testing.T) {
	// Two runs over the same inputs must yield bit-identical decimals: the
	// calculator keeps no hidden state between calls.
	trades := []Trade{buy(1, 1, 100, 0.3), buy(2, 2, 120, 0.7), sell(3, 1.5, 130, 0.2)}

	first, err := CalculatePnL(trades, EUR(125))
	if err != nil {
		t.Fatalf("CalculatePnL() failed: %v", err)
	}
	second, err := CalculatePnL(trades, EUR(125))
	if err != nil {
		t.Fatalf("CalculatePnL() failed on second run: %v", err)
	}

	if first.Amount.String() != second.Amount.String() ||
		first.Cost.String() != second.Cost.String() ||
		first.Realized.String() != second.Realized.String() ||
		first.Unrealized.String() != second.Unrealized.String() {
		t.Errorf("CalculatePnL() is not idempotent: %+v != %+v", first, second)
	}
}

func TestCalculatePnL_Invariants(t *testing.T) {
	t.Run("no sells means no realized gain", func(t *testing.T) {
		trades := []Trade{buy(1, 1, 100, 0.5), buy(2, 0.25, 333.12, 0.1), buy(3, 4, 98.7, 0)}

		got, err := CalculatePnL(trades, EUR(150))
		if err != nil {
			t.Fatalf("CalculatePnL() failed: %v", err)
		}
		if !got.Realized.IsZero() {
			t.Errorf("Realized = %s, want 0 without sells", got.Realized)
		}
		if !got.Unrealized.Equal(got.Value.Sub(got.Cost)) {
			t.Errorf("Unrealized = %s, want value - cost = %s", got.Unrealized, got.Value.Sub(got.Cost))
		}
		if !got.Cost.Equal(got.TotalBuys) {
			t.Errorf("Cost = %s, want TotalBuys = %s without sells", got.Cost, got.TotalBuys)
		}
	})

	t.Run("position equals buys minus sells", func(t *testing.T) {
		trades := []Trade{buy(1, 2, 10, 0), buy(2, 3, 11, 0), sell(3, 1.5, 12, 0), sell(4, 2, 13, 0)}

		got, err := CalculatePnL(trades, EUR(12))
		if err != nil {
			t.Fatalf("CalculatePnL() failed: %v", err)
		}
		if !got.Amount.Equal(Q(1.5)) {
			t.Errorf("Amount = %s, want 1.5 (= 5 bought - 3.5 sold)", got.Amount)
		}
		if !got.Oversold.IsZero() {
			t.Errorf("Oversold = %s, want 0", got.Oversold)
		}
	})
}

func TestCalculatePnL_NegativePrice(t *testing.T) {
	if _, err := CalculatePnL(nil, EUR(-1)); err == nil {
		t.Fatal("CalculatePnL() accepted a negative price")
	}
}
