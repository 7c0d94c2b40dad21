package coinfolio

import "testing"

func TestCalculateDiscrepancyBreakdown(t *testing.T) {
	testCases := []struct {
		name            string
		fifo            float64
		actual          float64
		net             float64
		rewards         float64
		wantTotal       Quantity
		wantUnexplained Quantity
		wantPercent     Percent
	}{
		{
			name:            "fully explained by transfers",
			fifo:            1.0,
			actual:          1.5,
			net:             0.5,
			rewards:         0,
			wantTotal:       Q(0.5),
			wantUnexplained: Q(0),
			wantPercent:     100,
		},
		{
			name:            "partially explained",
			fifo:            1.0,
			actual:          2.0,
			net:             0.25,
			rewards:         0.25,
			wantTotal:       Q(1),
			wantUnexplained: Q(0.5),
			wantPercent:     50,
		},
		{
			name:            "nothing explained",
			fifo:            1.0,
			actual:          1.4,
			net:             0,
			rewards:         0,
			wantTotal:       Q(0.4),
			wantUnexplained: Q(0.4),
			wantPercent:     0,
		},
		{
			name:            "negative discrepancy explained by withdrawals",
			fifo:            2.0,
			actual:          1.0,
			net:             -1.0,
			rewards:         0,
			wantTotal:       Q(-1),
			wantUnexplained: Q(0),
			wantPercent:     100,
		},
		{
			name:            "over-explanation is surfaced, not clamped",
			fifo:            1.0,
			actual:          1.5,
			net:             1.0,
			rewards:         0,
			wantTotal:       Q(0.5),
			wantUnexplained: Q(-0.5),
			wantPercent:     200,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			summary := TransferSummary{NetTransfers: Q(tc.net), PotentialRewards: Q(tc.rewards)}
			got := CalculateDiscrepancyBreakdown(Q(tc.fifo), Q(tc.actual), summary)

			if !got.TotalDiscrepancy.Equal(tc.wantTotal) {
				t.Errorf("TotalDiscrepancy = %s, want %s", got.TotalDiscrepancy, tc.wantTotal)
			}
			if !got.Unexplained.Equal(tc.wantUnexplained) {
				t.Errorf("Unexplained = %s, want %s", got.Unexplained, tc.wantUnexplained)
			}
			if !got.ExplanationPercentage.Equal(tc.wantPercent) {
				t.Errorf("ExplanationPercentage = %s, want %s", got.ExplanationPercentage, tc.wantPercent)
			}
		})
	}
}

func TestCalculateDiscrepancyBreakdown_ZeroDiscrepancy(t *testing.T) {
	// With nothing to explain the percentage is always 100, whatever the
	// transfer and reward values are.
	summaries := []TransferSummary{
		{},
		{NetTransfers: Q(5)},
		{NetTransfers: Q(-3), PotentialRewards: Q(1)},
	}
	for _, summary := range summaries {
		got := CalculateDiscrepancyBreakdown(Q(1), Q(1), summary)
		if !got.ExplanationPercentage.Equal(100) {
			t.Errorf("ExplanationPercentage = %s with summary %+v, want 100%%", got.ExplanationPercentage, summary)
		}
		if !got.TotalDiscrepancy.IsZero() {
			t.Errorf("TotalDiscrepancy = %s, want 0", got.TotalDiscrepancy)
		}
	}
}
