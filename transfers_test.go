package coinfolio

import "testing"

func TestAnalyzeTransfers_Totals(t *testing.T) {
	deposits := []Transfer{
		deposit(1, 1.5),
		deposit(2, 0.5),
		{Symbol: "BTC", Amount: Q(9), Status: TransferPending, Timestamp: 3},
		{Symbol: "BTC", Amount: Q(7), Status: TransferFailed, Timestamp: 4},
	}
	withdrawals := []Transfer{
		withdrawal(5, 0.7),
		{Symbol: "BTC", Amount: Q(3), Status: TransferPending, Timestamp: 6},
	}

	got := AnalyzeTransfers(deposits, withdrawals)

	if !got.TotalDeposits.Equal(Q(2)) {
		t.Errorf("TotalDeposits = %s, want 2 (pending and failed excluded)", got.TotalDeposits)
	}
	if !got.TotalWithdrawals.Equal(Q(0.7)) {
		t.Errorf("TotalWithdrawals = %s, want 0.7", got.TotalWithdrawals)
	}
	if !got.NetTransfers.Equal(Q(1.3)) {
		t.Errorf("NetTransfers = %s, want 1.3", got.NetTransfers)
	}
	if got.DepositCount != 2 || got.WithdrawalCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1 (completed only)", got.DepositCount, got.WithdrawalCount)
	}
}

func TestAnalyzeTransfers_FewDeposits(t *testing.T) {
	// With fewer than two completed deposits there is no population to
	// compare against, so nothing is flagged as a reward.
	for _, deposits := range [][]Transfer{nil, {deposit(1, 0.001)}} {
		got := AnalyzeTransfers(deposits, nil)
		if !got.PotentialRewards.IsZero() {
			t.Errorf("PotentialRewards = %s with %d deposits, want 0", got.PotentialRewards, len(deposits))
		}
	}
}

func TestRewardHeuristic_TinyVersusMedian(t *testing.T) {
	// 0.0001 is far below 1% of the median (1), so it is flagged.
	deposits := []Transfer{
		deposit(1, 1),
		deposit(2, 1),
		deposit(3, 0.0001),
	}

	got := AnalyzeTransfers(deposits, nil)
	if !got.PotentialRewards.Equal(Q(0.0001)) {
		t.Errorf("PotentialRewards = %s, want 0.0001", got.PotentialRewards)
	}
}

func TestRewardHeuristic_RepeatingSmallAmounts(t *testing.T) {
	// Four near-identical small deposits among two large ones: the repeating
	// small-amount pattern of a staking schedule.
	deposits := []Transfer{
		deposit(1, 10),
		deposit(2, 10),
		deposit(3, 0.052),
		deposit(4, 0.050),
		deposit(5, 0.051),
		deposit(6, 0.049),
	}

	got := AnalyzeTransfers(deposits, nil)
	want := Q(0.052).Add(Q(0.050)).Add(Q(0.051)).Add(Q(0.049))
	if !got.PotentialRewards.Equal(want) {
		t.Errorf("PotentialRewards = %s, want %s", got.PotentialRewards, want)
	}
}

func TestRewardHeuristic_RoundDenomination(t *testing.T) {
	deposits := []Transfer{
		deposit(1, 2.5),
		deposit(2, 0.01),
	}

	got := AnalyzeTransfers(deposits, nil)
	if !got.PotentialRewards.Equal(Q(0.01)) {
		t.Errorf("PotentialRewards = %s, want the exact round denomination 0.01", got.PotentialRewards)
	}
}

func TestRewardHeuristic_GenuineDepositsNotFlagged(t *testing.T) {
	// Ordinary external transfers of comparable size: nothing to flag.
	deposits := []Transfer{
		deposit(1, 1.2),
		deposit(2, 0.8),
		deposit(3, 2.3),
	}

	got := AnalyzeTransfers(deposits, nil)
	if !got.PotentialRewards.IsZero() {
		t.Errorf("PotentialRewards = %s, want 0 for genuine deposits", got.PotentialRewards)
	}
}

func TestRewardHeuristic_Configurable(t *testing.T) {
	// A stricter profile with no round denominations and an impossible
	// similarity requirement flags nothing.
	h := RewardHeuristic{
		TinyMedianRatio:  Q(0.000001),
		SmallUnit:        Q(0.000001),
		SmallMeanRatio:   Q(0.000001),
		SimilarTolerance: Q(0),
		MinSimilar:       100,
	}
	deposits := []Transfer{
		deposit(1, 1),
		deposit(2, 0.001),
		deposit(3, 0.0001),
	}

	got := h.Analyze(deposits, nil)
	if !got.PotentialRewards.IsZero() {
		t.Errorf("PotentialRewards = %s, want 0 under the strict profile", got.PotentialRewards)
	}
}
