package coinfolio

import (
	"sort"
)

// TransferSummary is an immutable summary of an asset's deposit and
// withdrawal history. Only completed transfers contribute to the totals and
// the counts; pending and failed records are ignored entirely.
type TransferSummary struct {
	TotalDeposits    Quantity
	TotalWithdrawals Quantity
	NetTransfers     Quantity // TotalDeposits - TotalWithdrawals
	DepositCount     int
	WithdrawalCount  int
	PotentialRewards Quantity // heuristic estimate, see RewardHeuristic
}

// MarshalJSON implements the json.Marshaler interface for TransferSummary.
func (s TransferSummary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("total_deposits", s.TotalDeposits)
	w.Append("total_withdrawals", s.TotalWithdrawals)
	w.Append("net_transfers", s.NetTransfers)
	w.Append("deposit_count", s.DepositCount)
	w.Append("withdrawal_count", s.WithdrawalCount)
	w.Append("potential_rewards", s.PotentialRewards)
	return w.MarshalJSON()
}

// RewardHeuristic holds the thresholds used to flag deposits that look like
// automated rewards (staking payouts, airdrops) rather than genuine external
// transfers. The constants have no derivation beyond matching observed
// exchange behavior, so they are parameters rather than invariants: tune them
// per exchange, or per asset, as needed.
//
// A completed deposit is flagged when any of these holds:
//   - its amount is below TinyMedianRatio of the median deposit amount;
//   - its amount is below SmallUnit and below SmallMeanRatio of the mean,
//     and at least MinSimilar other deposits lie within SimilarTolerance of
//     it (the repeating small-amount pattern of a staking schedule);
//   - its amount exactly equals one of RoundDenominations.
//
// This is estimation, not identification. With fewer than two completed
// deposits there is no population to compare against and nothing is flagged.
type RewardHeuristic struct {
	TinyMedianRatio    Quantity
	SmallUnit          Quantity
	SmallMeanRatio     Quantity
	SimilarTolerance   Quantity
	MinSimilar         int
	RoundDenominations []Quantity
}

// DefaultRewardHeuristic returns the thresholds used when none are supplied.
func DefaultRewardHeuristic() RewardHeuristic {
	return RewardHeuristic{
		TinyMedianRatio:  Q(0.01),
		SmallUnit:        Q(1),
		SmallMeanRatio:   Q(0.1),
		SimilarTolerance: Q(0.1),
		MinSimilar:       3,
		RoundDenominations: []Quantity{
			Q(0.001), Q(0.01), Q(0.1),
		},
	}
}

// AnalyzeTransfers summarizes an asset's deposits and withdrawals using the
// default reward heuristic.
func AnalyzeTransfers(deposits, withdrawals []Transfer) TransferSummary {
	return DefaultRewardHeuristic().Analyze(deposits, withdrawals)
}

// Analyze summarizes an asset's deposits and withdrawals: completed volumes,
// counts, net transfer direction, and the heuristic reward estimate.
func (h RewardHeuristic) Analyze(deposits, withdrawals []Transfer) TransferSummary {
	var s TransferSummary

	completed := make([]Transfer, 0, len(deposits))
	for _, d := range deposits {
		if !d.Completed() {
			continue
		}
		completed = append(completed, d)
		s.TotalDeposits = s.TotalDeposits.Add(d.Amount)
		s.DepositCount++
	}
	for _, w := range withdrawals {
		if !w.Completed() {
			continue
		}
		s.TotalWithdrawals = s.TotalWithdrawals.Add(w.Amount)
		s.WithdrawalCount++
	}

	s.NetTransfers = s.TotalDeposits.Sub(s.TotalWithdrawals)
	s.PotentialRewards = h.potentialRewards(completed)
	return s
}

// potentialRewards sums the amounts of deposits flagged as likely rewards.
// Deposits are iterated in chronological order; the order does not change the
// sum but keeps the flagging deterministic for identical amounts.
func (h RewardHeuristic) potentialRewards(deposits []Transfer) Quantity {
	var rewards Quantity
	if len(deposits) < 2 {
		return rewards
	}

	median := medianAmount(deposits)
	mean := meanAmount(deposits)

	for i, d := range deposits {
		switch {
		case d.Amount.LessThan(median.Mul(h.TinyMedianRatio)):
			rewards = rewards.Add(d.Amount)
		case h.repeatingSmallAmount(deposits, i, mean):
			rewards = rewards.Add(d.Amount)
		case h.roundDenomination(d.Amount):
			rewards = rewards.Add(d.Amount)
		}
	}
	return rewards
}

// repeatingSmallAmount reports whether deposit i is small in absolute and
// relative terms and has at least MinSimilar other deposits within
// SimilarTolerance of its amount, the signature of a recurring payout.
func (h RewardHeuristic) repeatingSmallAmount(deposits []Transfer, i int, mean Quantity) bool {
	amount := deposits[i].Amount
	if !amount.LessThan(h.SmallUnit) || !amount.LessThan(mean.Mul(h.SmallMeanRatio)) {
		return false
	}
	tolerance := amount.Mul(h.SimilarTolerance)
	similar := 0
	for j, other := range deposits {
		if j == i {
			continue
		}
		if other.Amount.Sub(amount).Abs().LessThanOrEqual(tolerance) {
			similar++
		}
	}
	return similar >= h.MinSimilar
}

// roundDenomination reports whether the amount exactly equals one of the
// configured round denominations.
func (h RewardHeuristic) roundDenomination(amount Quantity) bool {
	for _, denom := range h.RoundDenominations {
		if amount.Equal(denom) {
			return true
		}
	}
	return false
}

// medianAmount returns the median completed deposit amount.
func medianAmount(deposits []Transfer) Quantity {
	amounts := make([]Quantity, len(deposits))
	for i, d := range deposits {
		amounts[i] = d.Amount
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })
	mid := len(amounts) / 2
	if len(amounts)%2 == 1 {
		return amounts[mid]
	}
	return amounts[mid-1].Add(amounts[mid]).Div(Q(2))
}

// meanAmount returns the mean completed deposit amount.
func meanAmount(deposits []Transfer) Quantity {
	var total Quantity
	for _, d := range deposits {
		total = total.Add(d.Amount)
	}
	return total.Div(Q(len(deposits)))
}
